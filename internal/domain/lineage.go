package domain

import (
	"time"

	"github.com/google/uuid"
)

// LineageDirection selects which side of an asset's lineage to traverse.
type LineageDirection string

const (
	LineageUpstream   LineageDirection = "UPSTREAM"
	LineageDownstream LineageDirection = "DOWNSTREAM"
	LineageBoth       LineageDirection = "BOTH"
)

// EdgeType classifies how a target asset derives from a source asset.
type EdgeType string

const (
	EdgeTypeDerives  EdgeType = "DERIVES"
	EdgeTypeCopies   EdgeType = "COPIES"
	EdgeTypeConsumes EdgeType = "CONSUMES"
)

// LineageEdge is one directed edge of the lineage graph: data flows from
// SourceID to TargetID.
type LineageEdge struct {
	ID        uuid.UUID `json:"id"`
	SourceID  uuid.UUID `json:"source_id"`
	TargetID  uuid.UUID `json:"target_id"`
	EdgeType  EdgeType  `json:"edge_type"`
	CreatedAt time.Time `json:"created_at"`
}

// NewLineageEdge creates an edge between two assets.
func NewLineageEdge(sourceID, targetID uuid.UUID, edgeType EdgeType) LineageEdge {
	return LineageEdge{
		ID:        uuid.New(),
		SourceID:  sourceID,
		TargetID:  targetID,
		EdgeType:  edgeType,
		CreatedAt: time.Now(),
	}
}

// LineageGraph is the bounded neighborhood of one asset.
type LineageGraph struct {
	RootID uuid.UUID     `json:"root_id"`
	Assets []Asset       `json:"assets"`
	Edges  []LineageEdge `json:"edges"`
}

// NodeIDs collects every distinct asset ID referenced by the edge set,
// root first. Edge endpoints appear once each regardless of how many edges
// touch them.
func NodeIDs(rootID uuid.UUID, edges []LineageEdge) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{rootID: {}}
	ids := []uuid.UUID{rootID}
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, edge := range edges {
		add(edge.SourceID)
		add(edge.TargetID)
	}
	return ids
}
