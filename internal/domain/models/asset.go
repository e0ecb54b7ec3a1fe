// internal/domain/models/asset.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Asset is uploaded-file metadata. The bytes live in the configured
// storage backend (local disk or S3) under StoragePath.
type Asset struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID   primitive.ObjectID `bson:"company_id" json:"company_id"`
	UploaderID  primitive.ObjectID `bson:"uploader_id" json:"uploader_id"`
	FileName    string             `bson:"file_name" json:"file_name"`
	ContentType string             `bson:"content_type" json:"content_type"`
	Size        int64              `bson:"size" json:"size"`
	StoragePath string             `bson:"storage_path" json:"-"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
