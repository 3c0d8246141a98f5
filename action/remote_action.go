package action

import (
	"context"
	"fmt"

	"github.com/dogansystem/agentflow/remote"
)

const ACTION_REMOTE_GET string = "remote_get"
const ACTION_REMOTE_CREATE string = "remote_create"
const ACTION_REMOTE_UPDATE string = "remote_update"
const ACTION_REMOTE_DELETE string = "remote_delete"

var _ Handler = new(remoteGetAction)
var _ Handler = new(remoteCreateAction)
var _ Handler = new(remoteUpdateAction)
var _ Handler = new(remoteDeleteAction)

// RegisterRemoteActions wires the remote-resource CRUD actions into the
// registry.
func RegisterRemoteActions(registry *Registry, client *remote.Client) {
	registry.Register(&remoteGetAction{client: client})
	registry.Register(&remoteCreateAction{client: client})
	registry.Register(&remoteUpdateAction{client: client})
	registry.Register(&remoteDeleteAction{client: client})
}

type remoteGetAction struct {
	client *remote.Client
}

func (a *remoteGetAction) Name() string {
	return ACTION_REMOTE_GET
}

func (a *remoteGetAction) Execute(ctx context.Context, config map[string]any, execContext map[string]any) Result {
	resourceType, err := stringParam(config, "resource_type")
	if err != nil {
		return Fail("%v", err)
	}
	filters, _ := config["filters"].(map[string]any)
	var fields []string
	if rawFields, ok := config["fields"].([]any); ok {
		for _, f := range rawFields {
			fields = append(fields, fmt.Sprintf("%v", f))
		}
	}
	result, err := a.client.Get(ctx, resourceType, filters, fields)
	if err != nil {
		return Fail("%v", err)
	}
	// make the fetched rows addressable by later steps
	execContext[fmt.Sprintf("%s_data", resourceType)] = result["data"]
	return Ok(result)
}

type remoteCreateAction struct {
	client *remote.Client
}

func (a *remoteCreateAction) Name() string {
	return ACTION_REMOTE_CREATE
}

func (a *remoteCreateAction) Execute(ctx context.Context, config map[string]any, execContext map[string]any) Result {
	resourceType, err := stringParam(config, "resource_type")
	if err != nil {
		return Fail("%v", err)
	}
	data, _ := config["data"].(map[string]any)
	result, err := a.client.Create(ctx, resourceType, data)
	if err != nil {
		return Fail("%v", err)
	}
	return Ok(result)
}

type remoteUpdateAction struct {
	client *remote.Client
}

func (a *remoteUpdateAction) Name() string {
	return ACTION_REMOTE_UPDATE
}

func (a *remoteUpdateAction) Execute(ctx context.Context, config map[string]any, execContext map[string]any) Result {
	resourceType, err := stringParam(config, "resource_type")
	if err != nil {
		return Fail("%v", err)
	}
	name, err := stringParam(config, "name")
	if err != nil {
		return Fail("%v", err)
	}
	data, _ := config["data"].(map[string]any)
	result, err := a.client.Update(ctx, resourceType, name, data)
	if err != nil {
		return Fail("%v", err)
	}
	return Ok(result)
}

type remoteDeleteAction struct {
	client *remote.Client
}

func (a *remoteDeleteAction) Name() string {
	return ACTION_REMOTE_DELETE
}

func (a *remoteDeleteAction) Execute(ctx context.Context, config map[string]any, execContext map[string]any) Result {
	resourceType, err := stringParam(config, "resource_type")
	if err != nil {
		return Fail("%v", err)
	}
	name, err := stringParam(config, "name")
	if err != nil {
		return Fail("%v", err)
	}
	result, err := a.client.Delete(ctx, resourceType, name)
	if err != nil {
		return Fail("%v", err)
	}
	return Ok(result)
}

func stringParam(config map[string]any, key string) (string, error) {
	value, ok := config[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("action config missing %s", key)
	}
	return value, nil
}
