// internal/infra/secrets/credentials.go
package secrets

import (
	"context"
	"errors"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// FetchCredentialsJSON reads a service-account JSON payload from Secret
// Manager. secretID may be a bare secret name (resolved under projectID,
// version "latest") or a full "projects/.../secrets/.../versions/..." name.
func FetchCredentialsJSON(ctx context.Context, sm *secretmanager.Client, projectID, secretID string) ([]byte, error) {
	if sm == nil {
		return nil, errors.New("secrets: secretmanager client is nil")
	}

	sid := strings.TrimSpace(secretID)
	if sid == "" {
		return nil, errors.New("secrets: secret id is empty")
	}

	name := sid
	if !strings.HasPrefix(sid, "projects/") {
		prj := strings.TrimSpace(projectID)
		if prj == "" {
			return nil, errors.New("secrets: projectID is empty")
		}
		name = "projects/" + prj + "/secrets/" + sid + "/versions/latest"
	}

	resp, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return nil, errors.New("secrets: AccessSecretVersion failed (" + name + "): " + err.Error())
	}
	if resp == nil || resp.Payload == nil || len(resp.Payload.Data) == 0 {
		return nil, errors.New("secrets: empty payload (" + name + ")")
	}

	return resp.Payload.Data, nil
}
