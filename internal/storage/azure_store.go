// Package storage implements the document store collaborator: processed
// documents are handed off here for the save/dedup decision.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/sirupsen/logrus"

	apperrors "go-doc-ingest/internal/errors"
	"go-doc-ingest/internal/logger"
	"go-doc-ingest/internal/metadata"
	"go-doc-ingest/pkg/models"
)

// DocumentStore persists processed documents and answers dedup queries.
type DocumentStore interface {
	Save(ctx context.Context, doc *models.ProcessedDocument, sourceURL string) (string, error)
	IsDuplicate(ctx context.Context, doc *models.ProcessedDocument, sourceURL string) (bool, error)
}

// storedDocument is the blob payload: the processed document plus the
// source reference it was ingested from.
type storedDocument struct {
	SourceURL string                    `json:"source_url"`
	Document  *models.ProcessedDocument `json:"document"`
}

type azureStore struct {
	client    *azblob.Client
	container string
}

// NewAzureStore connects to Azure Blob Storage with shared-key credentials.
func NewAzureStore(accountName, accountKey, container string) (DocumentStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, apperrors.NewCollaboratorUnavailableError(
			"invalid storage credentials",
			"check STORAGE_ACCOUNT_NAME and STORAGE_ACCOUNT_KEY",
			err,
		)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, apperrors.NewCollaboratorUnavailableError(
			"failed to create storage client",
			"check network connectivity to the storage account",
			err,
		)
	}

	return &azureStore{client: client, container: container}, nil
}

// Save uploads the document JSON keyed by its deduplication key. Re-saving
// the same key overwrites, which is the intended idempotent behaviour.
func (s *azureStore) Save(ctx context.Context, doc *models.ProcessedDocument, sourceURL string) (string, error) {
	key := dedupKeyFor(doc, sourceURL)

	payload, err := json.Marshal(storedDocument{SourceURL: sourceURL, Document: doc})
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode document", err)
	}

	if _, err := s.client.UploadBuffer(ctx, s.container, key+".json", payload, nil); err != nil {
		return "", apperrors.NewCollaboratorUnavailableError(
			"document upload failed",
			"check network connectivity and storage permissions",
			err,
		)
	}

	logger.WithFields(logrus.Fields{
		"key":       key,
		"container": s.container,
		"bytes":     len(payload),
	}).Info("Document saved")

	return key, nil
}

// IsDuplicate checks whether a document with the same dedup key already
// exists and, if so, whether the stored title is close enough to count as
// the same document rather than a key collision.
func (s *azureStore) IsDuplicate(ctx context.Context, doc *models.ProcessedDocument, sourceURL string) (bool, error) {
	key := dedupKeyFor(doc, sourceURL)

	resp, err := s.client.DownloadStream(ctx, s.container, key+".json", nil)
	if err != nil {
		// Missing blob means no duplicate; the SDK error is not worth
		// distinguishing further here.
		return false, nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, apperrors.NewCollaboratorUnavailableError(
			"failed to read stored document",
			"check network connectivity to the storage account",
			err,
		)
	}

	var stored storedDocument
	if err := json.Unmarshal(data, &stored); err != nil {
		return false, nil
	}
	if stored.Document == nil || doc.Normalized == nil || stored.Document.Normalized == nil {
		return true, nil
	}
	return metadata.TitlesMatch(doc.Normalized.NormalizedTitle, stored.Document.Normalized.NormalizedTitle), nil
}

func dedupKeyFor(doc *models.ProcessedDocument, sourceURL string) string {
	title := doc.Metadata.FileName
	if doc.Normalized != nil && doc.Normalized.NormalizedTitle != "" {
		title = doc.Normalized.NormalizedTitle
	}
	return metadata.DedupKey(sourceURL, title, doc.Metadata.FileType)
}
