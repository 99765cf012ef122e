// internal/workers/matching/sync-match-embedding/models.go
package syncembedding

const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

type Input struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Action string `json:"action,omitempty"`
}

type Output struct {
	Synced     bool   `json:"synced"`
	Dimensions int    `json:"dimensions,omitempty"`
	Action     string `json:"action"`
}
