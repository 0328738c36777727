package model

// Job is one entry of a batch file: download a file and optionally unpack it
type Job struct {
	ID        string            `toml:"id"`
	URL       string            `toml:"url"`
	Directory string            `toml:"directory"`
	Filename  string            `toml:"filename"`
	ExtractTo string            `toml:"extract_to"`
	Headers   map[string]string `toml:"headers" masq:"secret"`
}

// JobFile is the top-level structure of a batch TOML file
type JobFile struct {
	Jobs []Job `toml:"job"`
}

// DownloadRequest converts the job into a download request
func (j *Job) DownloadRequest() *DownloadRequest {
	return &DownloadRequest{
		ID:        j.ID,
		URL:       j.URL,
		Directory: j.Directory,
		Filename:  j.Filename,
		Headers:   j.Headers,
	}
}
