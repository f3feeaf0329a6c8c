package resource

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/jscodecleaner/htmlutils"
	"github.com/jscodecleaner/htmlutils/internal/protocol"
)

// Resolver rewrites resource links using a fixed set of resources.
// It is safe for concurrent use once created.
type Resolver struct {
	resources map[string]*Resource
	baseURL   string
	log       zerolog.Logger
}

// NewResolver creates a resolver for the given resources. Image sources
// are made relative to baseURL, or to the current directory when it is
// empty.
func NewResolver(resources []Resource, baseURL string, log zerolog.Logger) *Resolver {
	byID := make(map[string]*Resource, len(resources))
	for i := range resources {
		res := resources[i]
		byID[strings.ToLower(res.ID)] = &res
	}
	return &Resolver{
		resources: byID,
		baseURL:   baseURL,
		log:       log,
	}
}

// Lookup returns the resource with the given ID.
func (r *Resolver) Lookup(id string) (*Resource, error) {
	res, ok := r.resources[strings.ToLower(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, id)
	}
	return res, nil
}

// Rewrite resolves every resource image and link in htmlStr.
func (r *Resolver) Rewrite(htmlStr string) (string, error) {
	out, err := htmlutils.ProcessImageTags(htmlStr, r.ImageAction)
	if err != nil {
		return "", err
	}
	return htmlutils.ProcessAnchorTags(out, r.AnchorAction)
}

// ImageAction is a htmlutils.RewriteFunc for <img> tags. Images of
// downloaded resources point to the resource file, resources that are
// not available yet become a placeholder, and resources that are not
// images become a text label. Anything else is left alone.
func (r *Resolver) ImageAction(src string) (*htmlutils.Action, error) {
	res, ok := r.resolve(src)
	if !ok {
		return nil, nil
	}

	if res.Status != StatusReady {
		attrs := htmlutils.NewAttributes(
			"class", "not-loaded-resource resource-status-"+string(res.Status),
			"data-resource-id", res.ID,
		)
		return &htmlutils.Action{
			Type: htmlutils.ActionReplaceElement,
			HTML: "<div " + htmlutils.AttributesHTML(attrs) + "></div>",
		}, nil
	}

	if !res.IsSupportedImage() {
		return &htmlutils.Action{
			Type: htmlutils.ActionReplaceElement,
			HTML: html.EscapeString(fmt.Sprintf("[Image: %s (%s)]", res.Title, res.Mime)),
		}, nil
	}

	return &htmlutils.Action{
		Type: htmlutils.ActionSetAttributes,
		Attrs: htmlutils.NewAttributes(
			"data-resource-id", res.ID,
			"src", r.fileURL(res),
		),
	}, nil
}

// AnchorAction is a htmlutils.RewriteFunc for <a> tags. Links to known
// resources are marked with the resource ID so that the viewer can open
// them. Links with an ID that is not a known resource are assumed to
// point to a note and are turned into callback URLs.
func (r *Resolver) AnchorAction(href string) (*htmlutils.Action, error) {
	if protocol.IsCallbackURL(href) || !IsResourceURL(href) {
		return nil, nil
	}

	id, err := URLToID(href)
	if err != nil {
		r.log.Debug().Err(err).Msg("Ignoring malformed resource link")
		return nil, nil
	}

	res, err := r.Lookup(id)
	if err != nil {
		return &htmlutils.Action{
			Type: htmlutils.ActionReplaceSource,
			URL:  protocol.NoteURL(id),
		}, nil
	}

	attrs := htmlutils.NewAttributes("href", "#", "data-resource-id", res.ID)
	if res.Mime != "" {
		attrs.Set("type", res.Mime)
	}
	return &htmlutils.Action{
		Type:  htmlutils.ActionSetAttributes,
		Attrs: attrs,
	}, nil
}

func (r *Resolver) resolve(src string) (*Resource, bool) {
	if !IsResourceURL(src) {
		return nil, false
	}

	id, err := URLToID(src)
	if err != nil {
		r.log.Debug().Err(err).Msg("Ignoring malformed resource source")
		return nil, false
	}

	res, err := r.Lookup(id)
	if err != nil {
		r.log.Debug().Str("resource_id", id).Msg("Resource not found, leaving image as-is")
		return nil, false
	}
	return res, true
}

func (r *Resolver) fileURL(res *Resource) string {
	base := "."
	if r.baseURL != "" {
		base = strings.TrimSuffix(r.baseURL, "/")
	}
	return fmt.Sprintf("%s/%s?t=%d", base, res.Filename(), res.UpdatedTime)
}
