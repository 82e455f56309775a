// Package config builds the executor's ContainerContext from the fixed
// positional argument vector, and decodes the base64/JSON-nested JVM
// option payloads carried within it.
package config

import (
	"github.com/cuemby/heron-executor/pkg/execerr"
)

// NumPositionalArgs is the external CLI contract: the executor is always
// invoked with exactly this many arguments after the program name.
const NumPositionalArgs = 31

// TopologyIdentity names the topology this container belongs to.
type TopologyIdentity struct {
	Name           string
	ID             string
	DefinitionFile string
}

// Coordination describes how to reach the external coordination store.
type Coordination struct {
	Node string
	Root string
}

// Ports bundles every opaque port string this container's children are
// configured with. Validated as 1..65535 by the collaborators that bind
// them, not by ContainerContext itself.
type Ports struct {
	Master     string
	Controller string
	Stats      string
	MetricsMgr string
	Shell      string
	Scheduler  string
}

// PackageKind is the artifact format of the topology's user code.
type PackageKind string

const (
	PackageTar PackageKind = "tar"
	PackageJar PackageKind = "jar"
)

// Package describes the topology's user-code artifact.
type Package struct {
	Kind         PackageKind
	ArtifactPath string
}

// Binaries holds the collaborator binaries and classpaths the Command
// Planner references verbatim when constructing argvs.
type Binaries struct {
	TMasterBinary            string
	StmgrBinary              string
	MetricsMgrClasspath      string
	Classpath                string
	HeronJavaHome            string
	HeronShellBinary         string
	PythonInstanceBinary     string
	CppInstanceBinary        string
	MetricsSinksConfigFile   string
	SchedulerClasspath       string
	CheckpointMgrClasspath   string
	HeronInternalsConfigFile string
	StatefulConfigFile       string
}

// ContainerContext is the bundle of this container's identity and
// configuration, built once at startup from the positional argv. LogDir
// is filled in afterward from the internals config; the context is not
// mutated once the components that read it are constructed.
type ContainerContext struct {
	ShardID int

	Topology     TopologyIdentity
	Coordination Coordination
	Ports        Ports
	Binaries     Binaries

	JVMOptionsDefault      string
	JVMOptionsPerComponent map[string]string
	ComponentRAM           map[string]int64

	LogDir string

	Package Package
}

// IsMaster reports whether this container is the master container
// (shard 0), which runs the topology master instead of stream manager
// and user instances.
func (c *ContainerContext) IsMaster() bool {
	return c.ShardID == 0
}

func configurationError(reason string) error {
	return &execerr.ConfigurationError{Reason: reason}
}
