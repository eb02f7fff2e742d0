package bootstrap

import (
	"net/rpc"
	"os/exec"

	"github.com/hashicorp/go-plugin"
)

// Handshake is the builder plugin's handshake, distinct from
// internal/callback's so a process can never be launched as the wrong
// kind of plugin.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "FORGE_BUILDER_PLUGIN",
	MagicCookieValue: "builder-project-v1",
}

// PluginMap names the single exposed service "builder".
var PluginMap = map[string]plugin.Plugin{
	"builder": &Plugin{},
}

// Builder is what a compiled builder sub-project exposes: its project
// descriptor, and the ability to invoke one of its own tasks by name.
type Builder interface {
	Describe() (*ProjectDescriptor, error)
	RunTask(name string) error
}

// Plugin adapts a Builder to hashicorp/go-plugin's net/rpc transport.
type Plugin struct {
	Impl Builder
}

func (p *Plugin) Server(*plugin.MuxBroker) (any, error) {
	return &builderRPCServer{impl: p.Impl}, nil
}

func (p *Plugin) Client(_ *plugin.MuxBroker, client *rpc.Client) (any, error) {
	return &builderRPCClient{client: client}, nil
}

type builderRPCServer struct {
	impl Builder
}

func (s *builderRPCServer) Describe(_ struct{}, resp *ProjectDescriptor) error {
	descriptor, err := s.impl.Describe()
	if err != nil {
		return err
	}

	*resp = *descriptor

	return nil
}

func (s *builderRPCServer) RunTask(name string, _ *struct{}) error {
	return s.impl.RunTask(name)
}

type builderRPCClient struct {
	client *rpc.Client
}

func (c *builderRPCClient) Describe() (*ProjectDescriptor, error) {
	var resp ProjectDescriptor
	if err := c.client.Call("Plugin.Describe", struct{}{}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *builderRPCClient) RunTask(name string) error {
	return c.client.Call("Plugin.RunTask", name, &struct{}{})
}

// Launch starts binaryPath as a builder plugin subprocess and returns a
// client handle. Callers must call Kill on the returned *plugin.Client
// when done.
func Launch(binaryPath string) (*plugin.Client, Builder, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          PluginMap,
		Cmd:              exec.Command(binaryPath),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, err
	}

	raw, err := rpcClient.Dispense("builder")
	if err != nil {
		client.Kill()
		return nil, nil, err
	}

	builder, ok := raw.(Builder)
	if !ok {
		client.Kill()
		return nil, nil, errInvalidBuilderPlugin
	}

	return client, builder, nil
}
