package model

type PredictionResult struct {
	Label string  `json:"prediction"`
	Score float64 `json:"score"`
}

// PredictResponse is the body of POST /model/predict. Pointer fields encode as
// null until a prediction has been made.
type PredictResponse struct {
	Success       bool     `json:"success"`
	Prediction    *string  `json:"prediction"`
	Score         *float64 `json:"score"`
	ImageFileName *string  `json:"image_file_name"`
	Detail        string   `json:"detail,omitempty"`
}

func NewPredictResponse(key ContentKey, res PredictionResult) PredictResponse {
	name := key.String()
	return PredictResponse{
		Success:       true,
		Prediction:    &res.Label,
		Score:         &res.Score,
		ImageFileName: &name,
	}
}

// FailedResponse carries default prediction fields and the error detail.
func FailedResponse(detail string) PredictResponse {
	return PredictResponse{Detail: detail}
}
