package deletion

// Warning records an asset that may have survived the cascade. Warnings
// never fail a deletion.
type Warning struct {
	Chunk     int      `json:"chunk"`
	PublicIDs []string `json:"publicIds"`
	Code      string   `json:"code,omitempty"`
	Message   string   `json:"message"`
}

// Result summarises a completed cascading deletion
type Result struct {
	Slug             string    `json:"slug"`
	DeletedBy        string    `json:"deletedBy"`
	DocumentsDeleted int       `json:"documentsDeleted"`
	Batches          int       `json:"batches"`
	AssetsRequested  int       `json:"assetsRequested"`
	AssetsDeleted    int       `json:"assetsDeleted"`
	Warnings         []Warning `json:"warnings"`
}

func (r *Result) warn(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// Clean reports whether every referenced asset was confirmed deleted
func (r *Result) Clean() bool {
	return len(r.Warnings) == 0
}
