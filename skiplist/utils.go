package skiplist

import (
	"fmt"
	"strings"
)

func (node *Node) Key() []byte {
	if node == nil {
		return nil
	}
	return node.key
}

func (node *Node) Val() []byte {
	if node == nil {
		return nil
	}
	return node.val
}

func (node *Node) GetAdjacent() *Node {
	if node == nil || len(node.forward) == 0 {
		return nil
	}
	return node.forward[0]
}

func (node *Node) Level() int {
	return len(node.forward)
}

/* Nil if list is empty */
func (sl *SkipList) FirstKey() []byte {
	return sl.head.forward[0].Key()
}

func (sl *SkipList) First() *Node {
	return sl.head.forward[0]
}

func (sl *SkipList) String() string {
	var sb strings.Builder
	for node := sl.head.forward[0]; node != nil; node = node.forward[0] {
		sb.WriteString(fmt.Sprintf("[%d](%s:%s) ", node.Level(), string(node.key), string(node.val)))
	}
	return sb.String()
}
