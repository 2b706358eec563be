package uid

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates 63-bit time-ordered numbers.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator for the given node. A negative node derives
// one from the hostname.
func NewSnowflake(node int64) (*Snowflake, error) {
	if node < 0 {
		node = hostNode()
	}

	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

// Generate returns the next id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func hostNode() int64 {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return 0
	}

	f := fnv.New32a()
	_, _ = f.Write([]byte(h))
	return int64(f.Sum32() % 1024)
}
