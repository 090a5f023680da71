package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	CreateSnapshot(ctx context.Context, projectID string) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	ListByProject(ctx context.Context, projectID string) ([]Response, error)
	EnsureShareID(ctx context.Context, id string) (*Response, error)
	ExportCSV(ctx context.Context, id string) (*CSVExport, error)

	// Public share-link surface.
	ProposalView(ctx context.Context, shareID string) (*Proposal, error)
	RespondProposal(ctx context.Context, shareID string, req RespondRequest) (*ProposalResponse, error)
}

type Response struct {
	ID             string            `json:"id"`
	ProjectID      string            `json:"project_id"`
	Version        int               `json:"version"`
	ShareID        *string           `json:"share_id,omitempty"`
	Snapshot       SnapshotPayload   `json:"snapshot"`
	Totals         SnapshotTotals    `json:"totals"`
	ProposalStatus *string           `json:"proposal_status,omitempty"`
	Response       *ProposalResponse `json:"proposal_response,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

type CSVExport struct {
	Filename string
	Content  string
}

// ProposalBranding is the org-level presentation carried on shared views.
type ProposalBranding struct {
	OrgName    string `json:"org_name"`
	BrandColor string `json:"brand_color,omitempty"`
	LogoURL    string `json:"logo_url,omitempty"`
	FooterNote string `json:"footer_note,omitempty"`
}

// Proposal is the external, read-only view of a shared BOM version.
type Proposal struct {
	ShareID   string            `json:"share_id"`
	Version   int               `json:"version"`
	Title     string            `json:"title,omitempty"`
	Note      string            `json:"note,omitempty"`
	Project   SnapshotProject   `json:"project"`
	Branding  ProposalBranding  `json:"branding"`
	Quote     ProposalQuote     `json:"quote"`
	Status    *string           `json:"status,omitempty"`
	Response  *ProposalResponse `json:"response,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type RespondRequest struct {
	Status string `json:"status"`
	Name   string `json:"name"`
	Note   string `json:"note"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrNotFound            = errors.New("not_found")
	ErrProjectNotFound     = errors.New("project_not_found")
)
