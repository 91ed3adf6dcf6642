package common

import "errors"

var ErrKeyDoesNotExist = errors.New("this key does not exist")
var ErrValDoesNotExist = errors.New("value must be non-empty")
var ErrEmptyKey = errors.New("empty keys are not allowed")
var ErrIdxOutOfBounds = errors.New("index out of bounds")
var ErrInvalidRange = errors.New("range is invalid")
var ErrCellMissing = errors.New("no cell stored at an occupied index")
