package testshim

import (
	"net/rpc"
	"os/exec"

	"github.com/hashicorp/go-plugin"
)

// Handshake identifies a test-runner plugin, distinct from the callback
// and builder handshakes so the three process kinds can never be confused.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "FORGE_TESTRUNNER_PLUGIN",
	MagicCookieValue: "test-runner-v1",
}

// PluginMap names the single exposed service "runner".
var PluginMap = map[string]plugin.Plugin{
	"runner": &Plugin{},
}

// Runner is what a framework's runner subprocess exposes: run every given
// definition against classpath and report one Result per definition.
type Runner interface {
	RunTests(classpath []string, defs []Definition) ([]Result, error)
}

// Plugin adapts a Runner to hashicorp/go-plugin's net/rpc transport.
type Plugin struct {
	Impl Runner
}

func (p *Plugin) Server(*plugin.MuxBroker) (any, error) {
	return &runnerRPCServer{impl: p.Impl}, nil
}

func (p *Plugin) Client(_ *plugin.MuxBroker, client *rpc.Client) (any, error) {
	return &runnerRPCClient{client: client}, nil
}

type runRequest struct {
	Classpath   []string
	Definitions []Definition
}

type runnerRPCServer struct {
	impl Runner
}

func (s *runnerRPCServer) RunTests(req runRequest, resp *[]Result) error {
	results, err := s.impl.RunTests(req.Classpath, req.Definitions)
	if err != nil {
		return err
	}

	*resp = results

	return nil
}

type runnerRPCClient struct {
	client *rpc.Client
}

func (c *runnerRPCClient) RunTests(classpath []string, defs []Definition) ([]Result, error) {
	var resp []Result
	if err := c.client.Call("Plugin.RunTests", runRequest{Classpath: classpath, Definitions: defs}, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// Launch starts a framework's RunnerPath as a test-runner plugin
// subprocess. Callers must Kill the returned *plugin.Client when done.
func Launch(fw Framework) (*plugin.Client, Runner, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          PluginMap,
		Cmd:              exec.Command(fw.RunnerPath),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, err
	}

	raw, err := rpcClient.Dispense("runner")
	if err != nil {
		client.Kill()
		return nil, nil, err
	}

	runner, ok := raw.(Runner)
	if !ok {
		client.Kill()
		return nil, nil, errInvalidRunnerPlugin
	}

	return client, runner, nil
}
