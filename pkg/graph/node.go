package graph

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID is a content-addressed identifier for graph nodes.
type NodeID string

// ZeroID is the empty NodeID.
const ZeroID NodeID = ""

// NewNodeID derives a stable ID from a path such as "defcurve/rail".
func NewNodeID(path string) NodeID {
	sum := sha256.Sum256([]byte(path))
	return NodeID(hex.EncodeToString(sum[:]))
}

// Short returns an abbreviated form for messages.
func (id NodeID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// IsZero reports whether id is ZeroID.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodeCurve   NodeKind = iota // polynomial curve
	NodeSurface                 // product surface of two curves
	NodeProbe                   // recorded evaluation of a curve or surface
)

func (k NodeKind) String() string {
	switch k {
	case NodeCurve:
		return "curve"
	case NodeSurface:
		return "surface"
	case NodeProbe:
		return "probe"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
