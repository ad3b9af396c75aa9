// Package remote implements the dbsync.Remote interface over the backend's
// HTTP API. The backend's storage model is opaque: this client only knows
// the resource routes and their JSON payloads.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/openpatra/formstore/internal/dbsync"
	"github.com/openpatra/formstore/pkg/types"
)

// Client talks to the remote forms backend. The zero value is not usable;
// construct with NewClient.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ dbsync.Remote = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithToken sets a bearer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the backend at baseURL. Call timeouts come
// from the request context; the HTTP client itself sets none.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, fn := range opts {
		fn(c)
	}
	return c
}

// localizedText is the backend's shape for a localized field family.
type localizedText struct {
	EN string `json:"en"`
	HI string `json:"hi,omitempty"`
	MR string `json:"mr,omitempty"`
}

type categoryPayload struct {
	ID          string        `json:"id"`
	Name        localizedText `json:"name"`
	Description localizedText `json:"description"`
	Icon        string        `json:"icon,omitempty"`
	Order       int           `json:"order"`
}

type institutionPayload struct {
	ID           string        `json:"id"`
	Name         localizedText `json:"name"`
	Description  localizedText `json:"description"`
	Type         string        `json:"type"`
	ParentID     string        `json:"parent_id,omitempty"`
	ContactEmail string        `json:"contact_email,omitempty"`
	ContactPhone string        `json:"contact_phone,omitempty"`
	Website      string        `json:"website,omitempty"`
}

type fieldPayload struct {
	ID               string                         `json:"id"`
	FieldType        string                         `json:"field_type"`
	Label            localizedText                  `json:"label"`
	Required         bool                           `json:"required"`
	Validation       types.FieldValidation          `json:"validation"`
	Options          []string                       `json:"options"`
	Position         types.FieldPosition            `json:"position"`
	PositionVariants map[string]types.FieldPosition `json:"position_variants,omitempty"`
	Order            int                            `json:"order"`
}

type formPayload struct {
	ID                string              `json:"id"`
	Title             localizedText       `json:"title"`
	Description       localizedText       `json:"description"`
	CategoryID        string              `json:"category_id"`
	InstitutionID     string              `json:"institution_id"`
	Languages         []string            `json:"languages"`
	PDFVariants       map[string]string   `json:"pdf_variants"`
	Thumbnails        map[string][]string `json:"thumbnails"`
	Status            string              `json:"status"`
	VerificationLevel int                 `json:"verification_level"`
	PublishedAt       string              `json:"published_at,omitempty"`
	Fields            []fieldPayload      `json:"fields"`
}

func categoryBody(c *types.Category) categoryPayload {
	return categoryPayload{
		ID:          c.ID,
		Name:        localizedText{EN: c.NameEN, HI: c.NameHI, MR: c.NameMR},
		Description: localizedText{EN: c.DescriptionEN, HI: c.DescriptionHI, MR: c.DescriptionMR},
		Icon:        c.Icon,
		Order:       c.DisplayOrder,
	}
}

func institutionBody(i *types.Institution) institutionPayload {
	return institutionPayload{
		ID:           i.ID,
		Name:         localizedText{EN: i.NameEN, HI: i.NameHI, MR: i.NameMR},
		Description:  localizedText{EN: i.DescriptionEN, HI: i.DescriptionHI, MR: i.DescriptionMR},
		Type:         i.Type,
		ParentID:     i.ParentID,
		ContactEmail: i.ContactEmail,
		ContactPhone: i.ContactPhone,
		Website:      i.Website,
	}
}

func formBody(f *types.Form, fields []*types.FormField) formPayload {
	p := formPayload{
		ID:                f.ID,
		Title:             localizedText{EN: f.TitleEN, HI: f.TitleHI, MR: f.TitleMR},
		Description:       localizedText{EN: f.DescriptionEN, HI: f.DescriptionHI, MR: f.DescriptionMR},
		CategoryID:        f.CategoryID,
		InstitutionID:     f.InstitutionID,
		Languages:         f.Languages,
		PDFVariants:       f.PDFVariants,
		Thumbnails:        f.Thumbnails,
		Status:            f.Status,
		VerificationLevel: f.VerificationLevel,
		PublishedAt:       f.PublishedAt,
		Fields:            make([]fieldPayload, 0, len(fields)),
	}
	for _, ff := range fields {
		p.Fields = append(p.Fields, fieldPayload{
			ID:               ff.ID,
			FieldType:        ff.FieldType,
			Label:            localizedText{EN: ff.LabelEN, HI: ff.LabelHI, MR: ff.LabelMR},
			Required:         ff.Required,
			Validation:       ff.Validation,
			Options:          ff.Options,
			Position:         ff.Position,
			PositionVariants: ff.PositionVariants,
			Order:            ff.OrderIndex,
		})
	}
	return p
}

// CategoryExists reports whether the backend has the category.
func (c *Client) CategoryExists(ctx context.Context, id string) (bool, error) {
	return c.exists(ctx, http.MethodGet, "/api/categories/"+url.PathEscape(id))
}

// CreateCategory creates the category on the backend.
func (c *Client) CreateCategory(ctx context.Context, cat *types.Category) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/categories", categoryBody(cat))
}

// InstitutionExists reports whether the backend has the institution.
func (c *Client) InstitutionExists(ctx context.Context, id string) (bool, error) {
	return c.exists(ctx, http.MethodGet, "/api/institutions/"+url.PathEscape(id))
}

// CreateInstitution creates the institution on the backend.
func (c *Client) CreateInstitution(ctx context.Context, inst *types.Institution) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/institutions", institutionBody(inst))
}

// FileExists reports whether the backend already stores the file path.
func (c *Client) FileExists(ctx context.Context, path string) (bool, error) {
	return c.exists(ctx, http.MethodHead, "/api/files/"+escapePath(path))
}

// UploadFile uploads raw file bytes under their store path.
func (c *Client) UploadFile(ctx context.Context, path string, data []byte) error {
	req, err := c.newRequest(ctx, http.MethodPut, "/api/files/"+escapePath(path), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	return c.do(req)
}

// FormExists reports whether the backend has the form.
func (c *Client) FormExists(ctx context.Context, id string) (bool, error) {
	return c.exists(ctx, http.MethodGet, "/api/forms/"+url.PathEscape(id))
}

// CreateForm creates the form and its fields on the backend.
func (c *Client) CreateForm(ctx context.Context, f *types.Form, fields []*types.FormField) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/forms", formBody(f, fields))
}

// UpdateForm replaces the backend's copy of the form and its fields.
func (c *Client) UpdateForm(ctx context.Context, f *types.Form, fields []*types.FormField) error {
	return c.sendJSON(ctx, http.MethodPut, "/api/forms/"+url.PathEscape(f.ID), formBody(f, fields))
}

// escapePath escapes a slash-separated blob path segment by segment, keeping
// the slashes as route separators.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

func (c *Client) newRequest(ctx context.Context, method, route string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+route, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// exists runs an existence probe: 2xx means present, 404 means absent,
// anything else is an error.
func (c *Client) exists(ctx context.Context, method, route string) (bool, error) {
	req, err := c.newRequest(ctx, method, route, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, fmt.Errorf("%s %s: unexpected status %d", method, route, resp.StatusCode)
	}
}

func (c *Client) sendJSON(ctx context.Context, method, route string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	req, err := c.newRequest(ctx, method, route, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return nil
}
