package callback

import (
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// Handshake is the shared handshake both the host process and the
// external compiler plugin must present, per hashicorp/go-plugin's usual
// pattern. Only one callback protocol version has ever shipped.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "FORGE_CALLBACK_PLUGIN",
	MagicCookieValue: "compiler-callback-v1",
}

// PluginMap is passed to plugin.ClientConfig/plugin.Serve so both sides
// agree the single exposed service is named "callback".
var PluginMap = map[string]plugin.Plugin{
	"callback": &Plugin{},
}

// Plugin adapts a Callback to hashicorp/go-plugin's net/rpc transport -
// net/rpc rather than gRPC, since the callback protocol is a short,
// fixed method set that doesn't need protoc-generated stubs.
type Plugin struct {
	Impl Callback
}

func (p *Plugin) Server(*plugin.MuxBroker) (any, error) {
	return &rpcServer{impl: p.Impl}, nil
}

func (p *Plugin) Client(_ *plugin.MuxBroker, client *rpc.Client) (any, error) {
	return &rpcClient{client: client}, nil
}

// rpcServer runs in the host process, on the receiving end of RPC calls
// issued by the external compiler shim's rpcClient.
type rpcServer struct {
	impl Callback
}

func (s *rpcServer) BeginSource(source string, _ *struct{}) error {
	s.impl.BeginSource(source)
	return nil
}

type depArgs struct{ Source, Target string }

func (s *rpcServer) SourceDep(args depArgs, _ *struct{}) error {
	s.impl.SourceDep(args.Source, args.Target)
	return nil
}

func (s *rpcServer) JarDep(args depArgs, _ *struct{}) error {
	s.impl.JarDep(args.Source, args.Target)
	return nil
}

func (s *rpcServer) ClassDep(args depArgs, _ *struct{}) error {
	s.impl.ClassDep(args.Source, args.Target)
	return nil
}

type subclassArgs struct {
	Source, Name, SuperName string
	IsModule                bool
}

func (s *rpcServer) FoundSubclass(args subclassArgs, _ *struct{}) error {
	s.impl.FoundSubclass(args.Source, args.Name, args.SuperName, args.IsModule)
	return nil
}

func (s *rpcServer) GeneratedClass(args depArgs, _ *struct{}) error {
	s.impl.GeneratedClass(args.Source, args.Target)
	return nil
}

func (s *rpcServer) EndSource(source string, _ *struct{}) error {
	s.impl.EndSource(source)
	return nil
}

// rpcClient runs inside the external compiler plugin process and
// satisfies the Callback interface by forwarding every call over RPC to
// the host's rpcServer.
type rpcClient struct {
	client *rpc.Client
}

func (c *rpcClient) BeginSource(source string) {
	_ = c.client.Call("Plugin.BeginSource", source, &struct{}{})
}

func (c *rpcClient) SourceDep(source, dependsOn string) {
	_ = c.client.Call("Plugin.SourceDep", depArgs{source, dependsOn}, &struct{}{})
}

func (c *rpcClient) JarDep(source, jarFile string) {
	_ = c.client.Call("Plugin.JarDep", depArgs{source, jarFile}, &struct{}{})
}

func (c *rpcClient) ClassDep(source, classFile string) {
	_ = c.client.Call("Plugin.ClassDep", depArgs{source, classFile}, &struct{}{})
}

func (c *rpcClient) FoundSubclass(source, name, superName string, isModule bool) {
	_ = c.client.Call("Plugin.FoundSubclass", subclassArgs{source, name, superName, isModule}, &struct{}{})
}

func (c *rpcClient) GeneratedClass(source, classFile string) {
	_ = c.client.Call("Plugin.GeneratedClass", depArgs{source, classFile}, &struct{}{})
}

func (c *rpcClient) EndSource(source string) {
	_ = c.client.Call("Plugin.EndSource", source, &struct{}{})
}
