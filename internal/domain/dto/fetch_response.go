package dto

// FetchDataResponse acknowledges that an ingestion job was queued.
// It says nothing about the outcome of the job.
type FetchDataResponse struct {
	Message string `json:"message" example:"ingestion of the last 2 reports scheduled in background"`
	JobID   string `json:"job_id" example:"3f0e6a5e-8d0c-4d8e-9a53-2f7f0c3f5b7a"`
}
