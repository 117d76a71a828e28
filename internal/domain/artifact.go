package domain

// Artifact is a serialized image suitable for transport and
// persistence: base64 payload plus metadata. PreviewURL is ephemeral
// and local to the session that produced it; it is excluded from
// fingerprints and never treated as part of the artifact's identity.
type Artifact struct {
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	Base64Data string `json:"base64Data"`
	Size       int64  `json:"size"`
	Position   int    `json:"position"`
	PreviewURL string `json:"previewUrl,omitempty"`
}
