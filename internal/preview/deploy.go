package preview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"

	"github.com/illegalcall/codeshell/internal/models"
)

// DeployRequest is the body sent to the deployment function.
type DeployRequest struct {
	AppName string         `json:"appName"`
	Files   models.FileMap `json:"files"`
}

type DeployResult struct {
	URL string `json:"url"`
}

// Deployer publishes a file set and returns where it is served.
type Deployer interface {
	Deploy(ctx context.Context, req DeployRequest) (*DeployResult, error)
}

// BuildDeployFiles returns the files to deploy. When the project has no
// index.html, the cached preview HTML is used as the entry point.
func BuildDeployFiles(files models.FileMap, previewCode *string) models.FileMap {
	out := files.Clone()
	if out[models.IndexFile] == "" && previewCode != nil && *previewCode != "" {
		out[models.IndexFile] = *previewCode
	}
	return out
}

// EdgeFunctionDeployer forwards deploys to a Supabase edge function that answers
// {"success":bool,"url":string,"error":string}.
type EdgeFunctionDeployer struct {
	endpoint   string
	serviceKey string
	function   string
}

// NewEdgeFunctionDeployer targets <supabaseURL>/functions/v1/<function>.
func NewEdgeFunctionDeployer(supabaseURL, serviceKey, function string) *EdgeFunctionDeployer {
	return &EdgeFunctionDeployer{
		endpoint:   strings.TrimSuffix(supabaseURL, "/") + "/functions/v1/" + function,
		serviceKey: serviceKey,
		function:   function,
	}
}

type invokeResult struct {
	code int
	body []byte
	err  error
}

func (d *EdgeFunctionDeployer) Deploy(ctx context.Context, req DeployRequest) (*DeployResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("deploy cancelled: %w", err)
	}

	done := make(chan invokeResult, 1)
	go func() {
		agent := fiber.Post(d.endpoint).
			Set(fiber.HeaderAuthorization, "Bearer "+d.serviceKey).
			Set("apikey", d.serviceKey).
			JSON(req)
		code, body, errs := agent.Bytes()
		done <- invokeResult{code: code, body: body, err: errors.Join(errs...)}
	}()

	var res invokeResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("deploy cancelled: %w", ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", d.function, res.err)
	}

	result, err := parseDeployResponse(string(res.body))
	if err != nil {
		return nil, err
	}
	if res.code < fiber.StatusOK || res.code >= fiber.StatusMultipleChoices {
		return nil, fmt.Errorf("deploy function %s returned status %d", d.function, res.code)
	}
	return result, nil
}

func parseDeployResponse(body string) (*DeployResult, error) {
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("deploy function returned invalid JSON: %.200s", body)
	}
	result := gjson.Parse(body)
	if !result.Get("success").Bool() {
		msg := result.Get("error").String()
		if msg == "" {
			msg = "deployment was not successful"
		}
		return nil, errors.New(msg)
	}
	url := result.Get("url").String()
	if url == "" {
		return nil, errors.New("deploy function returned no url")
	}
	return &DeployResult{URL: url}, nil
}
