package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 文件上传相关常量
const (
	MimeVideo       = "video/"
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedVideoExtensions = []string{".mp4", ".mov", ".mkv", ".webm"}
	AllowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".svg"}

	// 解答视频上限 500MB
	MaxSolutionVideoSize int64 = 500 << 20
	// 题目配图上限 10MB
	MaxDiagramSize int64 = 10 << 20
)
