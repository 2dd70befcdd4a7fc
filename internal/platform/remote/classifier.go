package remote

import (
	"context"

	"github.com/go-resty/resty/v2"
)

type classifyResponse struct {
	IsOutlier bool `json:"is_outlier"`
}

// Classifier calls the outlier classification service.
type Classifier struct {
	httpClient *resty.Client
	url        string
}

func NewClassifier(url string) *Classifier {
	return &Classifier{httpClient: newClient(), url: url}
}

// Classify posts the flattened feature map and returns the outlier verdict.
func (c *Classifier) Classify(ctx context.Context, features map[string]any) (bool, error) {
	var result classifyResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(features).
		SetResult(&result).
		Post(c.url)
	if err != nil {
		return false, &UnavailableError{Service: "classifier", Reason: "connection failed", Err: err}
	}
	if resp.IsError() {
		return false, &UnavailableError{
			Service: "classifier",
			Reason:  "remote returned " + resp.Status() + ": " + string(resp.Body()),
		}
	}
	return result.IsOutlier, nil
}
