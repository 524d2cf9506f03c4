package dto

// QueueProcessResult summarizes one processor sweep.
type QueueProcessResult struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}
