package config

// StorageConfig selects where uploaded review images are written.
// Backend "local" writes into Dir and serves it under /uploads; backend
// "s3" puts objects into an S3-compatible bucket (AWS or MinIO).
type StorageConfig struct {
	Backend     string
	Dir         string
	MaxBytes    int64
	S3Bucket    string
	S3Region    string
	S3Endpoint  string // custom endpoint for MinIO; empty for AWS
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string // base URL objects are reachable at
}

func loadStorageConfig(e *env) StorageConfig {
	sc := StorageConfig{
		Backend:     e.str("UPLOAD_BACKEND", "local"),
		Dir:         e.str("UPLOAD_DIR", "uploads"),
		MaxBytes:    int64(e.integer("UPLOAD_MAX_BYTES", 10<<20)),
		S3Bucket:    e.str("S3_BUCKET", ""),
		S3Region:    e.str("S3_REGION", "us-east-1"),
		S3Endpoint:  e.str("S3_ENDPOINT", ""),
		S3AccessKey: e.str("S3_ACCESS_KEY", ""),
		S3SecretKey: e.str("S3_SECRET_KEY", ""),
		S3PublicURL: e.str("S3_PUBLIC_URL", ""),
	}
	if sc.Backend == "s3" {
		e.must("S3_BUCKET")
	}
	return sc
}
