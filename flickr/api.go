package flickr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-flickr-colours/internal/errors"
)

// maxResponseBytes caps how much of a REST response is read.
const maxResponseBytes = 1 << 20

// API calls the Flickr REST endpoint through an http.Client that signs every
// request (see Client.api).
type API struct {
	httpClient *http.Client
	baseURL    string
}

func NewAPI(httpClient *http.Client, baseURL string) *API {
	return &API{httpClient: httpClient, baseURL: baseURL}
}

type content struct {
	Content string `json:"_content"`
}

// flexInt accepts both 5 and "5"; Flickr is not consistent about numeric fields.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type envelope struct {
	Stat    string `json:"stat"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TestLogin returns the NSID and username of the token's owner.
func (a *API) TestLogin(ctx context.Context) (Identity, error) {
	var resp struct {
		User struct {
			ID       string  `json:"id"`
			Username content `json:"username"`
		} `json:"user"`
	}
	if err := a.call(ctx, "flickr.test.login", nil, &resp); err != nil {
		return Identity{}, err
	}
	return Identity{NSID: resp.User.ID, Username: resp.User.Username.Content}, nil
}

func (a *API) PhotosetsGetList(ctx context.Context) (PhotosetList, error) {
	var resp struct {
		Photosets struct {
			CanCreate flexInt `json:"cancreate"`
			Page      flexInt `json:"page"`
			Pages     flexInt `json:"pages"`
			PerPage   flexInt `json:"perpage"`
			Total     flexInt `json:"total"`
			Photoset  []struct {
				ID     string  `json:"id"`
				Photos flexInt `json:"photos"`
				Title  content `json:"title"`
			} `json:"photoset"`
		} `json:"photosets"`
	}
	if err := a.call(ctx, "flickr.photosets.getList", nil, &resp); err != nil {
		return PhotosetList{}, err
	}

	sets := resp.Photosets
	list := PhotosetList{
		CanCreate: sets.CanCreate != 0,
		Page:      int(sets.Page),
		Pages:     int(sets.Pages),
		PerPage:   int(sets.PerPage),
		Total:     int(sets.Total),
		Photosets: make([]Photoset, 0, len(sets.Photoset)),
	}
	for _, set := range sets.Photoset {
		list.Photosets = append(list.Photosets, Photoset{
			ID:     set.ID,
			Title:  set.Title.Content,
			Photos: int(set.Photos),
		})
	}
	return list, nil
}

func (a *API) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, restURL(a.baseURL, method, params), nil)
	if err != nil {
		return fmt.Errorf("[flickr %s] build request: %w", method, err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrProvider, "[flickr %s] %v", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrapf(errors.ErrProvider, "[flickr %s] read body: %v", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(errors.ErrProvider, "[flickr %s] unexpected status %d", method, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.Wrapf(errors.ErrProvider, "[flickr %s] decode: %v", method, err)
	}
	if env.Stat != "ok" {
		return fmt.Errorf("%w: %w", errors.ErrProvider, &APIError{Method: method, Code: env.Code, Message: env.Message})
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(errors.ErrProvider, "[flickr %s] decode: %v", method, err)
	}
	return nil
}
