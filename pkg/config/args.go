package config

import (
	"fmt"
	"strconv"

	"github.com/cuemby/heron-executor/pkg/execerr"
)

// Positional argument indices. The external CLI contract is a fixed
// 31-argument vector; this is the single place that maps index to
// meaning. Everything downstream uses ContainerContext, never argv.
const (
	argShardID = iota
	argTopologyName
	argTopologyID
	argTopologyDefnFile
	argStateManagerConnection
	argStateManagerRoot
	argTMasterBinary
	argStmgrBinary
	argMetricsMgrClasspath
	argInstanceJVMOpts
	argClasspath
	argMasterPort
	argTMasterControllerPort
	argTMasterStatsPort
	argHeronInternalsConfigFile
	argComponentRAMMap
	argComponentJVMOpts
	argPkgType
	argTopologyJarFile
	argHeronJavaHome
	argShellPort
	argHeronShellBinary
	argPythonInstanceBinary
	argCppInstanceBinary
	argMetricsSinksConfigFile
	argSchedulerClasspath
	argSchedulerPort
	argMetricsMgrPort
	argCheckpointMgrClasspath
	argCheckpointMgrPort
	argStatefulConfigFile
)

// Usage is printed on ArgumentError, mirroring the original executor's
// print_usage behavior.
const Usage = "heron-executor <shard_id> <topology_name> <topology_id> <topology_defn_file> " +
	"<state_manager_connection> <state_manager_root> <tmaster_binary> <stmgr_binary> " +
	"<metricsmgr_classpath> <instance_jvm_opts_in_base64> <classpath> <master_port> " +
	"<tmaster_controller_port> <tmaster_stats_port> <heron_internals_config_file> " +
	"<component_ram_map> <component_jvm_opts_in_base64> <pkg_type> <topology_jar_file> " +
	"<heron_java_home> <shell_port> <heron_shell_binary> <python_instance_binary> " +
	"<cpp_instance_binary> <metrics_sinks_config_file> <scheduler_classpath> <scheduler_port> " +
	"<metrics_manager_port> <checkpoint_manager_classpath> <checkpoint_manager_port> " +
	"<stateful_config_file>"

// ParseArgs builds a ContainerContext from the fixed positional argument
// vector. len(args) must equal NumPositionalArgs exactly.
func ParseArgs(args []string) (*ContainerContext, error) {
	if len(args) != NumPositionalArgs {
		return nil, &execerr.ArgumentError{
			Usage: fmt.Sprintf("expected %d arguments, got %d\nusage: %s", NumPositionalArgs, len(args), Usage),
		}
	}

	shardID, err := strconv.Atoi(args[argShardID])
	if err != nil || shardID < 0 {
		return nil, &execerr.ArgumentError{Usage: fmt.Sprintf("shard_id must be a non-negative integer, got %q", args[argShardID])}
	}

	pkgType := PackageKind(args[argPkgType])
	if pkgType != PackageTar && pkgType != PackageJar {
		return nil, &execerr.ArgumentError{Usage: fmt.Sprintf("pkg_type must be %q or %q, got %q", PackageTar, PackageJar, pkgType)}
	}

	componentRAM, err := ParseComponentRAMMap(args[argComponentRAMMap])
	if err != nil {
		return nil, configurationError(err.Error())
	}

	jvmOptsDefault, err := DecodeJVMOpts(args[argInstanceJVMOpts])
	if err != nil {
		return nil, configurationError(fmt.Sprintf("instance_jvm_opts: %v", err))
	}

	jvmOptsPerComponent, err := DecodeComponentJVMOpts(args[argComponentJVMOpts])
	if err != nil {
		return nil, configurationError(fmt.Sprintf("component_jvm_opts: %v", err))
	}

	ctx := &ContainerContext{
		ShardID: shardID,
		Topology: TopologyIdentity{
			Name:           args[argTopologyName],
			ID:             args[argTopologyID],
			DefinitionFile: args[argTopologyDefnFile],
		},
		Coordination: Coordination{
			Node: args[argStateManagerConnection],
			Root: args[argStateManagerRoot],
		},
		Ports: Ports{
			Master:     args[argMasterPort],
			Controller: args[argTMasterControllerPort],
			Stats:      args[argTMasterStatsPort],
			MetricsMgr: args[argMetricsMgrPort],
			Shell:      args[argShellPort],
			Scheduler:  args[argSchedulerPort],
		},
		Binaries: Binaries{
			TMasterBinary:            args[argTMasterBinary],
			StmgrBinary:              args[argStmgrBinary],
			MetricsMgrClasspath:      args[argMetricsMgrClasspath],
			Classpath:                args[argClasspath],
			HeronJavaHome:            args[argHeronJavaHome],
			HeronShellBinary:         args[argHeronShellBinary],
			PythonInstanceBinary:     args[argPythonInstanceBinary],
			CppInstanceBinary:        args[argCppInstanceBinary],
			MetricsSinksConfigFile:   args[argMetricsSinksConfigFile],
			SchedulerClasspath:       args[argSchedulerClasspath],
			CheckpointMgrClasspath:   args[argCheckpointMgrClasspath],
			HeronInternalsConfigFile: args[argHeronInternalsConfigFile],
			StatefulConfigFile:       args[argStatefulConfigFile],
		},
		JVMOptionsDefault:      jvmOptsDefault,
		JVMOptionsPerComponent: jvmOptsPerComponent,
		ComponentRAM:           componentRAM,
		Package: Package{
			Kind:         pkgType,
			ArtifactPath: args[argTopologyJarFile],
		},
	}

	return ctx, nil
}
