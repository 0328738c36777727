package model

// EventName identifies an event sent to the host application
type EventName string

const (
	EventDownloadProgress EventName = "download:progress"
	EventDownloadComplete EventName = "download:complete"
)

// Event is a notification emitted by the downloader
type Event struct {
	Name    EventName `json:"name"`
	Payload Progress  `json:"payload"`
}
