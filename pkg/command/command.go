// Package command implements the Command Planner: a pure function from
// a container's context and packing plan to the desired set of
// long-lived child processes.
package command

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cuemby/heron-executor/pkg/config"
	"github.com/cuemby/heron-executor/pkg/execerr"
	"github.com/cuemby/heron-executor/pkg/plan"
)

// Set maps a stable child name to its argv. Name is the identity the
// Reconciler diffs on; argv equality (not pointer equality) decides
// keep-vs-restart.
type Set map[string][]string

const (
	codeCacheMB = 64
	permGenMB   = 128
	minJVMMB    = codeCacheMB + permGenMB + 2
)

// Plan computes the desired CommandSet for ctx given the currently
// installed packing plan. It is deterministic: identical inputs produce
// byte-for-byte identical argvs, which the Reconciler relies on.
func Plan(ctx *config.ContainerContext, pp plan.PackingPlan) (Set, error) {
	set := Set{}

	if ctx.IsMaster() {
		set["heron-tmaster"] = tmasterArgv(ctx)
		set[fmt.Sprintf("metricsmgr-%d", 0)] = metricsMgrArgv(ctx, 0)
	} else {
		slots := pp[ctx.ShardID]
		set[fmt.Sprintf("stmgr-%d", ctx.ShardID)] = stmgrArgv(ctx, slots)
		set[fmt.Sprintf("metricsmgr-%d", ctx.ShardID)] = metricsMgrArgv(ctx, ctx.ShardID)

		for _, slot := range slots {
			argv, err := instanceArgv(ctx, slot)
			if err != nil {
				return nil, err
			}
			set[instanceName(ctx.ShardID, slot)] = argv
		}
	}

	set[fmt.Sprintf("heron-shell-%d", ctx.ShardID)] = shellArgv(ctx)

	return set, nil
}

func instanceName(shardID int, slot plan.InstanceSlot) string {
	return fmt.Sprintf("container_%d_%s_%d", shardID, slot.ComponentName, slot.GlobalTaskID)
}

func tmasterArgv(ctx *config.ContainerContext) []string {
	return []string{
		ctx.Binaries.TMasterBinary,
		"--topology-name=" + ctx.Topology.Name,
		"--topology-id=" + ctx.Topology.ID,
		"--topology-definition-file=" + ctx.Topology.DefinitionFile,
		"--zkhostportlist=" + ctx.Coordination.Node,
		"--zkroot=" + ctx.Coordination.Root,
		"--myhost=127.0.0.1",
		"--master-port=" + ctx.Ports.Master,
		"--controller-port=" + ctx.Ports.Controller,
		"--stats-port=" + ctx.Ports.Stats,
		"--config-file=" + ctx.Binaries.HeronInternalsConfigFile,
	}
}

func stmgrArgv(ctx *config.ContainerContext, slots []plan.InstanceSlot) []string {
	argv := []string{
		ctx.Binaries.StmgrBinary,
		"--topology-name=" + ctx.Topology.Name,
		"--topology-id=" + ctx.Topology.ID,
		"--topology-definition-file=" + ctx.Topology.DefinitionFile,
		"--zkhostportlist=" + ctx.Coordination.Node,
		"--zkroot=" + ctx.Coordination.Root,
		"--stmgr-id=" + fmt.Sprintf("stmgr-%d", ctx.ShardID),
		"--myhost=127.0.0.1",
		"--master-port=" + ctx.Ports.Master,
		"--metricsmgr-port=" + ctx.Ports.MetricsMgr,
		"--shell-port=" + ctx.Ports.Shell,
		"--config-file=" + ctx.Binaries.HeronInternalsConfigFile,
		"--instances=" + instanceIDList(slots),
	}
	return argv
}

// instanceIDList is part of the stream manager's argv, so changing the
// instance set assigned to a shard changes its argv and the Reconciler
// naturally schedules a restart. The ids keep the plan's slot order.
func instanceIDList(slots []plan.InstanceSlot) string {
	ids := make([]string, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, strconv.Itoa(s.GlobalTaskID))
	}
	return strings.Join(ids, ",")
}

func metricsMgrArgv(ctx *config.ContainerContext, index int) []string {
	return []string{
		"java",
		"-Xmx1024m",
		"-XX:+HeapDumpOnOutOfMemoryError",
		"-Xloggc:" + filepath.Join(ctx.LogDir, fmt.Sprintf("gc.metricsmgr-%d.log", index)),
		"-cp", ctx.Binaries.MetricsMgrClasspath,
		"com.heron.metricsmgr.MetricsManager",
		"--id=" + fmt.Sprintf("metricsmgr-%d", index),
		"--port=" + ctx.Ports.MetricsMgr,
		"--topology-name=" + ctx.Topology.Name,
		"--topology-id=" + ctx.Topology.ID,
		"--sinks-config-file=" + ctx.Binaries.MetricsSinksConfigFile,
		"--config-file=" + ctx.Binaries.HeronInternalsConfigFile,
	}
}

func shellArgv(ctx *config.ContainerContext) []string {
	return []string{
		ctx.Binaries.HeronShellBinary,
		"--port=" + ctx.Ports.Shell,
		"--log-dir=" + ctx.LogDir,
	}
}

// instanceArgv builds the JVM command for a single user-code instance,
// sizing heap/new-gen from the component's RAM budget.
func instanceArgv(ctx *config.ContainerContext, slot plan.InstanceSlot) ([]string, error) {
	ramBytes, ok := ctx.ComponentRAM[slot.ComponentName]
	if !ok {
		return nil, &execerr.ConfigurationError{Reason: fmt.Sprintf("no component_ram entry for %q", slot.ComponentName)}
	}

	totalJVMMB := ramBytes / (1024 * 1024)
	if totalJVMMB < minJVMMB {
		return nil, &execerr.ConfigurationError{
			Reason: fmt.Sprintf("component %q ram budget %d bytes (%d MB) is below the %d MB floor", slot.ComponentName, ramBytes, totalJVMMB, minJVMMB),
		}
	}

	heapMB := totalJVMMB - codeCacheMB - permGenMB
	youngMB := heapMB / 2

	name := instanceName(ctx.ShardID, slot)
	argv := []string{
		"java",
		"-Xmx" + strconv.FormatInt(heapMB, 10) + "m",
		"-Xms" + strconv.FormatInt(heapMB, 10) + "m",
		"-Xmn" + strconv.FormatInt(youngMB, 10) + "m",
		"-XX:ReservedCodeCacheSize=" + strconv.Itoa(codeCacheMB) + "m",
		"-XX:MaxPermSize=" + strconv.Itoa(permGenMB) + "m",
		"-XX:+HeapDumpOnOutOfMemoryError",
		"-Xloggc:" + filepath.Join(ctx.LogDir, "gc."+name+".log"),
	}

	argv = append(argv, splitOpts(ctx.JVMOptionsDefault)...)
	if perComponent, ok := ctx.JVMOptionsPerComponent[slot.ComponentName]; ok {
		argv = append(argv, splitOpts(perComponent)...)
	}

	argv = append(argv,
		"-cp", ctx.Binaries.Classpath,
		"com.heron.instance.HeronInstance",
		"--topology-name="+ctx.Topology.Name,
		"--topology-id="+ctx.Topology.ID,
		"--instance-id="+name,
		"--component-name="+slot.ComponentName,
		"--task-id="+strconv.Itoa(slot.GlobalTaskID),
		"--component-index="+strconv.Itoa(slot.ComponentIndex),
		"--stmgr-id="+fmt.Sprintf("stmgr-%d", ctx.ShardID),
		"--metricsmgr-port="+ctx.Ports.MetricsMgr,
	)

	return argv, nil
}

func splitOpts(opts string) []string {
	return strings.Fields(opts)
}
