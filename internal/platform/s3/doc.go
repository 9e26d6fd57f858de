// Package s3 archives rendered deploy plans to an S3 bucket for audit
// and diffing across runs.
package s3
