package utils

import (
	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string. Device and tab
// scope ids use it.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewSnowflakeNode returns a snowflake node for nodeID, falling back to
// node 1 when nodeID is outside the range snowflake accepts.
func NewSnowflakeNode(nodeID int64) *snowflake.Node {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		// node 1 is always valid
		node, _ = snowflake.NewNode(1)
	}
	return node
}

// SnowflakeIDs returns a generator of int64 ids drawn from node.
func SnowflakeIDs(node *snowflake.Node) func() int64 {
	return func() int64 { return node.Generate().Int64() }
}
