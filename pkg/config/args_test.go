package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/heron-executor/pkg/execerr"
)

func validArgs() []string {
	return []string{
		"1",                 // shard_id
		"my-topology",       // topology_name
		"my-topology-id",    // topology_id
		"topology.defn",     // topology_defn_file
		"127.0.0.1:2181",    // state_manager_connection
		"/heron/topologies", // state_manager_root
		"tmaster",           // tmaster_binary
		"stmgr",             // stmgr_binary
		"/classpath/mm",     // metricsmgr_classpath
		base64.StdEncoding.EncodeToString([]byte("-Xdefault")), // instance_jvm_opts_in_base64
		"/classpath",    // classpath
		"10001",         // master_port
		"10002",         // tmaster_controller_port
		"10003",         // tmaster_stats_port
		"internals.yaml", // heron_internals_config_file
		"S:314572800",    // component_ram_map (300MiB)
		"",               // component_jvm_opts_in_base64
		"tar",            // pkg_type
		"topology.jar",   // topology_jar_file
		"/usr/lib/jvm",   // heron_java_home
		"10005",          // shell_port
		"heron-shell",    // heron_shell_binary
		"python-instance", // python_instance_binary
		"cpp-instance",   // cpp_instance_binary
		"sinks.yaml",     // metrics_sinks_config_file
		"/classpath/sched", // scheduler_classpath
		"10006",          // scheduler_port
		"10004",          // metrics_manager_port
		"/classpath/ckpt", // checkpoint_manager_classpath
		"10007",          // checkpoint_manager_port
		"stateful.yaml",  // stateful_config_file
	}
}

func TestParseArgsHappyPath(t *testing.T) {
	args := validArgs()
	require.Len(t, args, NumPositionalArgs)

	ctx, err := ParseArgs(args)
	require.NoError(t, err)

	assert.Equal(t, 1, ctx.ShardID)
	assert.Equal(t, "my-topology", ctx.Topology.Name)
	assert.Equal(t, "tar", string(ctx.Package.Kind))
	assert.Equal(t, "-Xdefault", ctx.JVMOptionsDefault)
	assert.Equal(t, int64(314572800), ctx.ComponentRAM["S"])
	assert.False(t, ctx.IsMaster())
}

func TestParseArgsMasterShard(t *testing.T) {
	args := validArgs()
	args[argShardID] = "0"

	ctx, err := ParseArgs(args)
	require.NoError(t, err)
	assert.True(t, ctx.IsMaster())
}

func TestParseArgsWrongCount(t *testing.T) {
	_, err := ParseArgs(validArgs()[:NumPositionalArgs-1])
	require.Error(t, err)

	var argErr *execerr.ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestParseArgsBadShardID(t *testing.T) {
	args := validArgs()
	args[argShardID] = "not-a-number"

	_, err := ParseArgs(args)
	require.Error(t, err)

	var argErr *execerr.ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestParseArgsNegativeShardID(t *testing.T) {
	args := validArgs()
	args[argShardID] = "-1"

	_, err := ParseArgs(args)
	require.Error(t, err)

	var argErr *execerr.ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestParseArgsBadPkgType(t *testing.T) {
	args := validArgs()
	args[argPkgType] = "zip"

	_, err := ParseArgs(args)
	require.Error(t, err)

	var argErr *execerr.ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestParseArgsMalformedComponentRAMMap(t *testing.T) {
	args := validArgs()
	args[argComponentRAMMap] = "S-not-colon-separated"

	_, err := ParseArgs(args)
	require.Error(t, err)

	var confErr *execerr.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}
