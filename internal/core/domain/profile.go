package domain

// PipelineStage is the avatar pipeline's current position. The pipeline
// is transient per UI session and is discarded on reset or teardown.
type PipelineStage int

const (
	StageIdle PipelineStage = iota
	StagePreviewLoaded
	StageCropped
	StageUploading
	StageCommitted
)

func (s PipelineStage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StagePreviewLoaded:
		return "preview_loaded"
	case StageCropped:
		return "cropped"
	case StageUploading:
		return "uploading"
	case StageCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// CropRegion selects the part of the loaded preview that becomes the
// avatar. Coordinates are in preview pixels. A zero-value region means
// "largest centered square".
type CropRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r CropRegion) IsZero() bool {
	return r.X == 0 && r.Y == 0 && r.Width == 0 && r.Height == 0
}

// BinaryAsset is the encoded avatar produced by the crop stage, prior to
// durable storage.
type BinaryAsset struct {
	Data        []byte
	ContentType string
}

// CommitResult reports the outcome of the commit stage. The identity
// write gates success: if it fails, Commit returns an error and no
// CommitResult. The directory record write is independent; its failure
// is carried in RecordErr and never fails the commit.
type CommitResult struct {
	AvatarURL string
	RecordErr error
}

// UploadProgress is a point-in-time snapshot of the commit upload.
type UploadProgress struct {
	Written int64 `json:"written"`
	Total   int64 `json:"total"`
}
