package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanChildrenKeyedBySubIFDTag(t *testing.T) {
	child := &Plan{Emit: newIFD(nil, 0, true)}
	parent := &Plan{
		Emit:     newIFD(nil, 0, true),
		Children: map[uint16][]*Plan{tagSubIFDs: {child}},
	}
	assert.Len(t, parent.Children[tagSubIFDs], 1)
	assert.Same(t, child, parent.Children[tagSubIFDs][0])
}

func TestConditionalSpecSelectionLength(t *testing.T) {
	spec := &ConditionalSpec{
		Original:  newIFD(nil, 0, true),
		Redacted:  newIFD(nil, 0, true),
		Selection: []bool{true, false},
	}
	assert.Len(t, spec.Selection, 2)
}
