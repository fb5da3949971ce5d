package export

type ExportRequest struct {
	OutputDir string `json:"output_dir"`
	FileName  string `json:"file_name,omitempty"`
	Overwrite bool   `json:"overwrite"`
}

type ExportResponse struct {
	Status     string `json:"status"`
	OutputPath string `json:"output_path"`
	Size       int64  `json:"size"`
}
