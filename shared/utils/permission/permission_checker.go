package permission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PermissionCheck represents a single permission check request
type PermissionCheck struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	ResourceSlug string `json:"resource_slug"`
	ActionSlug   string `json:"action_slug"`
}

// PermissionCheckResponse represents the response from permission service
type PermissionCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// PermissionClient handles communication with an external permission service
type PermissionClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPermissionClient creates a new permission service client
func NewPermissionClient(baseURL string) *PermissionClient {
	return &PermissionClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// CheckPermission checks if user has permission for specific resource and action
func (pc *PermissionClient) CheckPermission(ctx context.Context, check PermissionCheck) (bool, error) {
	jsonData, err := json.Marshal(check)
	if err != nil {
		return false, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/permissions/check", pc.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("permission service returned status: %d", resp.StatusCode)
	}

	var result PermissionCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Allowed, nil
}

// RemoteChecker is a Checker that delegates every decision to the permission service.
type RemoteChecker struct {
	client *PermissionClient
}

func NewRemoteChecker(baseURL string) *RemoteChecker {
	return &RemoteChecker{client: NewPermissionClient(baseURL)}
}

func (r *RemoteChecker) HasPermission(ctx context.Context, subject Subject, action Action) (bool, error) {
	resource, verb := action.Split()
	return r.client.CheckPermission(ctx, PermissionCheck{
		UserID:       subject.UserID.String(),
		Role:         subject.Role,
		ResourceSlug: resource,
		ActionSlug:   verb,
	})
}
