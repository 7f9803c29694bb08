package types

// EditEntry is one saved edit in the local history database
type EditEntry struct {
	ID        int64  `json:"id" yaml:"id"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	RecordID  string `json:"recordId" yaml:"recordId"`
	Before    string `json:"before" yaml:"before"`
	After     string `json:"after" yaml:"after"`
	BaseURL   string `json:"baseUrl" yaml:"baseUrl"`
}
