package listquery

import (
	"net/url"

	"github.com/mitchellh/mapstructure"

	"github.com/pac-william/mercado/internal/common/apperrors"
)

// Params is the typed view of a list query. Keys other than the common ones
// land in Filters.
type Params struct {
	Page    int            `mapstructure:"page"`
	Size    int            `mapstructure:"size"`
	Name    string         `mapstructure:"name"`
	Sort    string         `mapstructure:"sort"`
	Filters map[string]any `mapstructure:",remain"`
}

// ParseParams decodes q into Params. A missing page is page 1.
func ParseParams(q url.Values) (Params, error) {
	p := Params{Page: 1}
	flat := make(map[string]any, len(q))
	for k, v := range q {
		if len(v) > 0 {
			flat[k] = v[0]
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(flat); err != nil {
		return p, apperrors.ErrValidationFailed.MsgErr("invalid list query", err)
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p, nil
}

// Values converts p back into query parameters, omitting defaults.
func (p Params) Values() url.Values {
	q := url.Values{}
	for k, v := range p.Filters {
		if s, ok := v.(string); ok && s != "" {
			q.Set(k, s)
		}
	}
	if p.Page > 1 {
		q.Set(PageKey, itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set(SizeKey, itoa(p.Size))
	}
	if p.Name != "" {
		q.Set(NameKey, p.Name)
	}
	if p.Sort != "" {
		q.Set(SortKey, p.Sort)
	}
	return q
}
