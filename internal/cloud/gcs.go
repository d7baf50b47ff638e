// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file covers the Cloud Storage side of video staging. On the Vertex AI
// backend Gemini reads video from a gs:// URI, so uploads are written to a
// staging bucket for the duration of one analysis and removed afterwards.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSObject identifies one object in Cloud Storage.
type GCSObject struct {
	Bucket   string
	Name     string
	MIMEType string
}

// URI returns the gs:// form of the object.
func (o *GCSObject) URI() string {
	return fmt.Sprintf("gs://%s/%s", o.Bucket, o.Name)
}

// StagingObjectName builds a collision-free object name under prefix that
// keeps the extension of filename.
func StagingObjectName(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(prefix, uuid.NewString()+ext)
}

// UploadToGCS writes data to bucket under name.
func UploadToGCS(ctx context.Context, client *storage.Client, bucket, name, mimeType string, data []byte) (*GCSObject, error) {
	w := client.Bucket(bucket).Object(name).NewWriter(ctx)
	w.ContentType = mimeType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to write gs://%s/%s: %w", bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize gs://%s/%s: %w", bucket, name, err)
	}
	return &GCSObject{Bucket: bucket, Name: name, MIMEType: mimeType}, nil
}

// DeleteFromGCS removes obj. A missing object is not an error.
func DeleteFromGCS(ctx context.Context, client *storage.Client, obj *GCSObject) error {
	err := client.Bucket(obj.Bucket).Object(obj.Name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", obj.URI(), err)
	}
	return nil
}
