package skiplist

import (
	"bytes"
	"errors"
	"math/rand"
)

var ErrKeyDoesNotExist = errors.New("key does not exist in skiplist")

type Node struct {
	key, val []byte
	forward  []*Node /* forward[i] is the next node on level i, nil at the end of the level */
}

type SkipList struct {
	head     *Node
	level    int /* Number of levels currently in use, at least 1 */
	length   int
	p        float64
	maxLevel int
}

func NewSkipList(p float64, maxLevel int) *SkipList {
	if maxLevel < 1 {
		maxLevel = 1
	}
	return &SkipList{head: &Node{forward: make([]*Node, maxLevel)}, level: 1, p: p, maxLevel: maxLevel}
}

func (sl *SkipList) Len() int {
	return sl.length
}

/*
- Walks down from the highest level and returns the first node with key >= 'key'
- If 'update' is non-nil, update[i] is set to the last node on level i whose key is < 'key'
*/
func (sl *SkipList) seek(key []byte, update []*Node) *Node {
	node := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for next := node.forward[i]; next != nil && bytes.Compare(next.key, key) < 0; next = node.forward[i] {
			node = next
		}
		if update != nil {
			update[i] = node
		}
	}
	return node.forward[0]
}

func (sl *SkipList) Search(key []byte) *Node {
	node := sl.seek(key, nil)
	if node != nil && bytes.Equal(node.key, key) {
		return node
	}
	return nil
}

/* First node whose key is >= 'key', nil if there is none */
func (sl *SkipList) SearchClosest(key []byte) *Node {
	return sl.seek(key, nil)
}

func (sl *SkipList) Insert(key, val []byte) error {
	update := make([]*Node, sl.maxLevel)
	node := sl.seek(key, update)

	/* If key already exists, simply update value */
	if node != nil && bytes.Equal(node.key, key) {
		node.val = val
		return nil
	}

	/* Else link in a new node with random level */
	lvl := sl.randomLevel()
	if lvl > sl.level {
		for i := sl.level; i < lvl; i++ {
			update[i] = sl.head
		}
		sl.level = lvl
	}

	newNode := &Node{key: key, val: val, forward: make([]*Node, lvl)}
	for i := 0; i < lvl; i++ {
		newNode.forward[i] = update[i].forward[i]
		update[i].forward[i] = newNode
	}
	sl.length++

	return nil
}

func (sl *SkipList) Delete(key []byte) error {
	update := make([]*Node, sl.maxLevel)
	node := sl.seek(key, update)
	if node == nil || !bytes.Equal(node.key, key) {
		return ErrKeyDoesNotExist
	}

	for i := 0; i < sl.level; i++ {
		if update[i].forward[i] != node {
			break
		}
		update[i].forward[i] = node.forward[i]
	}

	/* Drop levels that became empty */
	for sl.level > 1 && sl.head.forward[sl.level-1] == nil {
		sl.level--
	}
	sl.length--

	return nil
}

func (sl *SkipList) randomLevel() int {
	lvl := 1
	for rand.Float64() < sl.p && lvl < sl.maxLevel {
		lvl++
	}
	return lvl
}
