package n8nstatus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
)

// ErrorDetails describes why an execution failed: the error message and the
// node it stopped on, as recovered from the execution_data table.
type ErrorDetails struct {
	Message  string
	NodeID   string
	NodeName string
}

// Node returns a display string for the failing node, preferring the
// resolved workflow node name over the raw id.
func (d *ErrorDetails) Node() string {
	switch {
	case d.NodeName != "" && d.NodeID != "" && d.NodeName != d.NodeID:
		return fmt.Sprintf("%s (ID: %s)", d.NodeName, d.NodeID)
	case d.NodeName != "":
		return d.NodeName
	case d.NodeID != "":
		return "Node " + d.NodeID
	default:
		return "Unknown node"
	}
}

// ErrorDetails loads failure details for one execution. It returns nil (no
// error) when the database predates the execution_data table, the execution
// has no detail row, or the stored JSON cannot be interpreted: enrichment is
// best-effort and must never take the report down with it.
func (s *Store) ErrorDetails(ctx context.Context, executionID string) (*ErrorDetails, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var present int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'execution_data'`,
	).Scan(&present)
	if err != nil || present == 0 {
		return nil, nil
	}

	const query = `
		SELECT d.data, w.nodes
		FROM execution_data d
		JOIN execution_entity e ON e.id = d.executionId
		LEFT JOIN workflow_entity w ON w.id = e.workflowId
		WHERE d.executionId = ?
		LIMIT 1
	`
	var data, nodes sql.NullString
	err = db.QueryRowContext(ctx, query, executionID).Scan(&data, &nodes)
	if err != nil || !data.Valid {
		return nil, nil
	}

	details := parseErrorData([]byte(data.String))
	if details == nil {
		return nil, nil
	}
	if nodes.Valid {
		details.NodeName = nodeNameFromWorkflow([]byte(nodes.String), details.NodeID)
	}
	return details, nil
}

// parseErrorData extracts the error message and last-executed node from the
// execution_data JSON. Older n8n versions store an object, newer versions an
// array of fragments; both shapes are handled and anything else yields nil.
func parseErrorData(data []byte) *ErrorDetails {
	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(data, &asObject); err == nil {
		return errorDetailsFromObject(asObject)
	}

	var asList []json.RawMessage
	if err := json.Unmarshal(data, &asList); err == nil {
		details := &ErrorDetails{Message: "Unknown error"}
		found := false
		for _, raw := range asList {
			var item map[string]json.RawMessage
			if err := json.Unmarshal(raw, &item); err != nil {
				continue
			}
			if msg, ok := extractErrorMessage(item["error"]); ok {
				details.Message = msg
				found = true
			}
			if id, ok := extractString(item["lastNodeExecuted"]); ok {
				details.NodeID = id
				found = true
			}
		}
		if !found {
			return nil
		}
		return details
	}
	return nil
}

func errorDetailsFromObject(obj map[string]json.RawMessage) *ErrorDetails {
	rawErr, ok := obj["error"]
	if !ok {
		return nil
	}
	details := &ErrorDetails{Message: "Unknown error"}
	if msg, ok := extractErrorMessage(rawErr); ok {
		details.Message = msg
	}
	if id, ok := extractString(obj["lastNodeExecuted"]); ok {
		details.NodeID = id
	}
	return details
}

// extractErrorMessage handles both `"error": {"message": "..."}` and a bare
// `"error": "..."` string.
func extractErrorMessage(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message, true
	}
	if s, ok := extractString(raw); ok {
		return s, true
	}
	return "", false
}

// extractString tolerates string, number, or other scalar encodings of a
// value that should be a string.
func extractString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

// nodeNameFromWorkflow resolves a node id against the workflow's nodes JSON
// array. The id recorded in execution data is a numeric index into that
// array in the schema versions this tool targets.
func nodeNameFromWorkflow(nodesJSON []byte, nodeID string) string {
	if len(nodesJSON) == 0 || nodeID == "" {
		return ""
	}
	var nodes []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(nodesJSON, &nodes); err != nil {
		return ""
	}

	// Some versions record the node's own id rather than an index.
	for _, node := range nodes {
		if node.ID == nodeID {
			return node.Name
		}
	}
	if index, err := strconv.Atoi(nodeID); err == nil && index >= 0 && index < len(nodes) {
		return nodes[index].Name
	}
	return ""
}
