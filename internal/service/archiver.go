package service

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"pharmapos/internal/csvexport"
	"pharmapos/internal/domain"
	"pharmapos/internal/port"
	"pharmapos/internal/tax"
)

// Archiver stores the frozen tax breakdown of issued documents.
type Archiver interface {
	ArchiveInvoice(ctx context.Context, inv *domain.Invoice) (string, error)
	ArchiveCreditNote(ctx context.Context, cn *domain.CreditNote, inv *domain.Invoice) (string, error)
}

type csvArchiver struct {
	storage port.ObjectStorage
	bucket  string
	prefix  string
}

// NewArchiver creates an Archiver that uploads CSV renderings to object storage
// under {prefix}/{seller}/{invoices|credit-notes}/{YYYY-MM}/.
func NewArchiver(storage port.ObjectStorage, bucket, prefix string) Archiver {
	return &csvArchiver{storage: storage, bucket: bucket, prefix: prefix}
}

func (a *csvArchiver) ArchiveInvoice(ctx context.Context, inv *domain.Invoice) (string, error) {
	if inv.Number == nil || inv.IssuedAt == nil {
		return "", domain.NewInvalidStateError("invoice", string(inv.Status), "archive")
	}

	var buf bytes.Buffer
	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		return "", err
	}
	if err := w.WriteInvoice(inv); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("rendering invoice csv: %w", err)
	}

	key := a.key(inv.SellerGSTINID.String(), "invoices", tax.SequencePeriod(*inv.IssuedAt),
		csvexport.BuildFilename(inv.Number, inv.ID))
	return a.upload(ctx, key, &buf)
}

func (a *csvArchiver) ArchiveCreditNote(ctx context.Context, cn *domain.CreditNote, inv *domain.Invoice) (string, error) {
	var buf bytes.Buffer
	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		return "", err
	}
	if err := w.WriteCreditNote(cn, inv); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("rendering credit note csv: %w", err)
	}

	number := cn.Number
	key := a.key(cn.SellerGSTINID.String(), "credit-notes", tax.SequencePeriod(cn.IssuedAt),
		csvexport.BuildFilename(&number, cn.ID))
	return a.upload(ctx, key, &buf)
}

func (a *csvArchiver) key(parts ...string) string {
	return path.Join(append([]string{a.prefix}, parts...)...)
}

func (a *csvArchiver) upload(ctx context.Context, key string, buf *bytes.Buffer) (string, error) {
	out, err := a.storage.Upload(ctx, port.UploadInput{
		Bucket:      a.bucket,
		Key:         key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: "text/csv",
		Size:        int64(buf.Len()),
	})
	if err != nil {
		return "", fmt.Errorf("archiving %s: %w", key, err)
	}
	return out.Location, nil
}
