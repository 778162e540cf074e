package outline

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// Recalculate rewrites order_index, parent_id and level from list position alone.
//
// Parents are numbered 1..N in order. A level-1 item belongs to the nearest preceding parent and
// gets N + k/10 (k = 1-based rank within the group). Groups with ten or more children switch to
// a wider fraction (N + k/100, ...) so keys stay unique and ordered. A leading child with no
// parent above it is promoted.
func (e *Editor) Recalculate() {
	sizes := groupSizes(e.nodes)

	parentNum := 0
	rank := 0
	var cur *node
	for _, n := range e.nodes {
		if n.item.Level > 1 {
			n.item.Level = 1
		}
		if n.item.Level < 0 || cur == nil {
			n.item.Level = 0
		}
		if n.item.Level == 0 {
			parentNum++
			rank = 0
			cur = n
			n.parent = uuid.Nil
			n.num, n.rank = parentNum, 0
			n.item.OrderIndex = float64(parentNum)
			n.item.ParentID = nil
			continue
		}
		rank++
		n.parent = cur.key
		n.num, n.rank = parentNum, rank
		n.item.OrderIndex = childOrderIndex(parentNum, rank, sizes[cur.key])
		pid := float64(parentNum)
		n.item.ParentID = &pid
	}
}

// groupSizes counts children per parent the same way Recalculate assigns them.
func groupSizes(nodes []*node) map[uuid.UUID]int {
	sizes := make(map[uuid.UUID]int)
	var cur *node
	for _, n := range nodes {
		if n.item.Level <= 0 || cur == nil {
			cur = n
			continue
		}
		sizes[cur.key]++
	}
	return sizes
}

func childOrderIndex(parentNum, rank, groupSize int) float64 {
	scale := int(math.Pow10(fractionDigits(groupSize)))
	return float64(parentNum*scale+rank) / float64(scale)
}

func fractionDigits(groupSize int) int {
	if groupSize <= 9 {
		return 1
	}
	return len(strconv.Itoa(groupSize))
}

// OutlineNumber is the display label for the item at i: "N" for parents, "N.k" for children.
func (e *Editor) OutlineNumber(i int) (string, error) {
	if err := e.checkIndex("outline-number", i); err != nil {
		return "", err
	}
	n := e.nodes[i]
	if n.rank == 0 {
		return strconv.Itoa(n.num), nil
	}
	return fmt.Sprintf("%d.%d", n.num, n.rank), nil
}
