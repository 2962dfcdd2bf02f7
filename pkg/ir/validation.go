package ir

import (
	"fmt"

	"go.uber.org/multierr"
)

// ValidationError reports a single structural problem found in a GraphIR.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks g for duplicate node ids and edges that reference nodes
// outside the graph, returning every problem found combined via multierr.
func (g GraphIR) Validate() error {
	var errs error

	nodeIDs := make(map[string]bool, len(g.Nodes))
	for _, node := range g.Nodes {
		if node.ID == "" {
			errs = multierr.Append(errs, ValidationError{
				Field:   "node.ID",
				Message: "node id cannot be empty",
			})
			continue
		}
		if nodeIDs[node.ID] {
			errs = multierr.Append(errs, ValidationError{
				Field:   "node.ID",
				Message: fmt.Sprintf("duplicate node id: %s", node.ID),
			})
		}
		nodeIDs[node.ID] = true
	}

	for _, edge := range g.Edges {
		if edge.From == "" {
			errs = multierr.Append(errs, ValidationError{
				Field:   "edge.From",
				Message: "edge has empty source",
			})
		} else if !nodeIDs[edge.From] {
			errs = multierr.Append(errs, ValidationError{
				Field:   "edge.From",
				Message: fmt.Sprintf("edge references non-existent source node: %s", edge.From),
			})
		}

		if edge.To == "" {
			errs = multierr.Append(errs, ValidationError{
				Field:   "edge.To",
				Message: "edge has empty target",
			})
		} else if !nodeIDs[edge.To] {
			errs = multierr.Append(errs, ValidationError{
				Field:   "edge.To",
				Message: fmt.Sprintf("edge references non-existent target node: %s", edge.To),
			})
		}
	}

	for _, node := range g.Nodes {
		if node.Order != nil && node.Level == nil {
			errs = multierr.Append(errs, ValidationError{
				Field:   "node.Order",
				Message: fmt.Sprintf("node %s has an order without a level", node.ID),
			})
		}
	}

	return errs
}
