package remote

import (
	"context"

	"github.com/go-resty/resty/v2"
)

type recommendRequest struct {
	PatientData map[string]any `json:"patient_data"`
}

type recommendResponse struct {
	GeneratedActions string `json:"generated_actions"`
}

// Recommender calls the action-generation service. It is only consulted for
// patients the classifier flagged as outliers.
type Recommender struct {
	httpClient *resty.Client
	url        string
}

func NewRecommender(url string) *Recommender {
	return &Recommender{httpClient: newClient(), url: url}
}

// Recommend posts the feature map wrapped under patient_data and returns the
// generated actions text verbatim.
func (r *Recommender) Recommend(ctx context.Context, features map[string]any) (string, error) {
	var result recommendResponse
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetBody(recommendRequest{PatientData: features}).
		SetResult(&result).
		Post(r.url)
	if err != nil {
		return "", &UnavailableError{Service: "recommender", Reason: "connection failed", Err: err}
	}
	if resp.IsError() {
		return "", &UnavailableError{
			Service: "recommender",
			Reason:  "remote returned " + resp.Status() + ": " + string(resp.Body()),
		}
	}
	return result.GeneratedActions, nil
}
