// Package config parses the flat key=value configuration grammar of
// §6 — deliberately not JSON, since the driver is meant to be edited by
// hand between experiment runs. Every recognized key is a case of the
// switch in Config.set; an unrecognized key or an unparseable value is a
// simerr.ConfigError, which aborts the run before the scheduler starts
// (§7).
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tolelom/dsimnet/reporter"
	"github.com/tolelom/dsimnet/simerr"
)

// Config holds every parameter the simulation core recognizes (§6).
type Config struct {
	NumSimulations     int
	NumSimulationsFrom int
	NumSimulationsTo   int

	TerminateAtTime float64

	NumHonestNodes    int
	NumMaliciousNodes int

	ThroughputMean float64
	ThroughputSD   float64
	PropagationTime float64

	WorkloadLambda           float64
	WorkloadNumTransactions  int
	TxSizeMean               float64
	TxSizeSD                 float64
	TxFeeValueMean           float64
	TxFeeValueSD             float64
	HasConflicts             bool
	ConflictsDispersion      float64
	ConflictsLikelihood      float64
	TargetTransaction        int64

	PowDifficulty    float64
	HashPowerMean    float64
	HashPowerSD      float64

	MaxBlockSize    int64
	MinSizeToMine   int64
	MinValueToMine  uint64

	RequiredConfirmations int
	MinChainLength        int
	MaxChainLength        int

	HashPowerChanges []HashPowerChangeSpec

	Reporter    reporter.Enabled
	ArchivePath string
}

// DefaultConfig mirrors the defaults named or implied across §6 and §4.5.
func DefaultConfig() *Config {
	return &Config{
		NumSimulations:  1,
		TerminateAtTime: 100000,

		NumHonestNodes:    3,
		NumMaliciousNodes: 0,

		PropagationTime: 1,

		WorkloadLambda:          1,
		WorkloadNumTransactions: 100,
		TxSizeMean:              250,
		TxFeeValueMean:          1,

		PowDifficulty: 1,
		HashPowerMean: 1,

		MaxBlockSize: 1_000_000,

		RequiredConfirmations: 6,
		MinChainLength:        2,
		MaxChainLength:        15,

		Reporter: reporter.DefaultEnabled(),
	}
}

// Load reads the key=value config file at path, starting from
// DefaultConfig and overriding each recognized key it finds.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, simerr.NewConfigError("config.path", path, err.Error())
	}
	defer f.Close()

	cfg := DefaultConfig()
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			return nil, simerr.NewConfigError(fmt.Sprintf("line %d", lineNo), line, "missing '=' separator")
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if err := cfg.set(key, value); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, simerr.NewConfigError("config.path", path, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) set(key, value string) error {
	asInt := func() (int, error) { return strconv.Atoi(value) }
	asInt64 := func() (int64, error) { return strconv.ParseInt(value, 10, 64) }
	asUint64 := func() (uint64, error) { return strconv.ParseUint(value, 10, 64) }
	asFloat := func() (float64, error) { return strconv.ParseFloat(value, 64) }
	asBool := func() (bool, error) { return strconv.ParseBool(value) }

	fail := func(err error) error { return simerr.NewConfigError(key, value, err.Error()) }

	switch key {
	case "sim.numSimulations":
		v, err := asInt()
		if err != nil {
			return fail(err)
		}
		c.NumSimulations = v
	case "sim.numSimulations.From":
		v, err := asInt()
		if err != nil {
			return fail(err)
		}
		c.NumSimulationsFrom = v
	case "sim.numSimulations.To":
		v, err := asInt()
		if err != nil {
			return fail(err)
		}
		c.NumSimulationsTo = v
	case "sim.terminate.atTime":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.TerminateAtTime = v
	case "net.numOfHonestNodes":
		v, err := asInt()
		if err != nil {
			return fail(err)
		}
		c.NumHonestNodes = v
	case "net.numOfMaliciousNodes":
		v, err := asInt()
		if err != nil {
			return fail(err)
		}
		c.NumMaliciousNodes = v
	case "net.throughputMean":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.ThroughputMean = v
	case "net.throughputSD":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.ThroughputSD = v
	case "net.propagationTime":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.PropagationTime = v
	case "workload.lambda":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.WorkloadLambda = v
	case "workload.numTransactions":
		v, err := asInt()
		if err != nil {
			return fail(err)
		}
		c.WorkloadNumTransactions = v
	case "workload.txSizeMean":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.TxSizeMean = v
	case "workload.txSizeSD":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.TxSizeSD = v
	case "workload.txFeeValueMean":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.TxFeeValueMean = v
	case "workload.txFeeValueSD":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.TxFeeValueSD = v
	case "workload.hasConflicts":
		v, err := asBool()
		if err != nil {
			return fail(err)
		}
		c.HasConflicts = v
	case "workload.conflicts.dispersion":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.ConflictsDispersion = v
	case "workload.conflicts.likelihood":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.ConflictsLikelihood = v
	case "workload.targetTransaction":
		v, err := asInt64()
		if err != nil {
			return fail(err)
		}
		c.TargetTransaction = v
	case "pow.difficulty":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.PowDifficulty = v
	case "pow.hashPowerMean":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.HashPowerMean = v
	case "pow.hashPowerSD":
		v, err := asFloat()
		if err != nil {
			return fail(err)
		}
		c.HashPowerSD = v
	case "bitcoin.maxBlockSize":
		v, err := asInt64()
		if err != nil {
			return fail(err)
		}
		c.MaxBlockSize = v
	case "bitcoin.minSizeToMine":
		v, err := asInt64()
		if err != nil {
			return fail(err)
		}
		c.MinSizeToMine = v
	case "bitcoin.minValueToMine":
		v, err := asUint64()
		if err != nil {
			return fail(err)
		}
		c.MinValueToMine = v
	case "attack.requiredConfirmations":
		v, err := asInt()
		if err != nil {
			return fail(err)
		}
		c.RequiredConfirmations = v
	case "attack.minChainLength":
		v, err := asInt()
		if err != nil {
			return fail(err)
		}
		c.MinChainLength = v
	case "attack.maxChainLength":
		v, err := asInt()
		if err != nil {
			return fail(err)
		}
		c.MaxChainLength = v
	case "node.hashPowerChanges":
		specs, err := ParseHashPowerChanges(value)
		if err != nil {
			return err
		}
		c.HashPowerChanges = specs
	case "reporter.reportEvents":
		v, err := asBool()
		if err != nil {
			return fail(err)
		}
		c.Reporter.Events = v
	case "reporter.reportBlockEvents":
		v, err := asBool()
		if err != nil {
			return fail(err)
		}
		c.Reporter.Blocks = v
	case "reporter.reportStructureEvents":
		v, err := asBool()
		if err != nil {
			return fail(err)
		}
		c.Reporter.Structures = v
	case "reporter.reportAttackEvents":
		v, err := asBool()
		if err != nil {
			return fail(err)
		}
		c.Reporter.Attacks = v
	case "reporter.reportErrorEvents":
		v, err := asBool()
		if err != nil {
			return fail(err)
		}
		c.Reporter.Errors = v
	case "reporter.archivePath":
		c.ArchivePath = value
	default:
		return simerr.NewConfigError(key, value, "unrecognized configuration key")
	}
	return nil
}

// Validate checks cross-field constraints Load's per-key parsing cannot
// catch on its own.
func (c *Config) Validate() error {
	if c.NumHonestNodes+c.NumMaliciousNodes <= 0 {
		return simerr.NewConfigError("net.numOfHonestNodes/net.numOfMaliciousNodes", "0", "at least one node is required")
	}
	if c.TerminateAtTime <= 0 {
		return simerr.NewConfigError("sim.terminate.atTime", fmt.Sprintf("%v", c.TerminateAtTime), "must be positive")
	}
	if c.NumSimulations <= 0 && c.NumSimulationsTo < c.NumSimulationsFrom {
		return simerr.NewConfigError("sim.numSimulations", fmt.Sprintf("%d", c.NumSimulations), "must be positive, or From/To must form a non-empty range")
	}
	return nil
}

// Save writes a subset of cfg back out in the same key=value grammar Load
// reads: the run count, termination time, node counts, network, workload
// rate and count, PoW difficulty and mean hash power, max block size and
// the attack thresholds. The remaining keys (tx size/fee distributions,
// conflicts, target transaction, hash-power SD, mining thresholds,
// hash-power changes, reporter flags and archive path, the From/To range)
// are not written.
func Save(cfg *Config, path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "sim.numSimulations=%d\n", cfg.NumSimulations)
	fmt.Fprintf(&b, "sim.terminate.atTime=%v\n", cfg.TerminateAtTime)
	fmt.Fprintf(&b, "net.numOfHonestNodes=%d\n", cfg.NumHonestNodes)
	fmt.Fprintf(&b, "net.numOfMaliciousNodes=%d\n", cfg.NumMaliciousNodes)
	fmt.Fprintf(&b, "net.throughputMean=%v\n", cfg.ThroughputMean)
	fmt.Fprintf(&b, "net.throughputSD=%v\n", cfg.ThroughputSD)
	fmt.Fprintf(&b, "net.propagationTime=%v\n", cfg.PropagationTime)
	fmt.Fprintf(&b, "workload.lambda=%v\n", cfg.WorkloadLambda)
	fmt.Fprintf(&b, "workload.numTransactions=%d\n", cfg.WorkloadNumTransactions)
	fmt.Fprintf(&b, "pow.difficulty=%v\n", cfg.PowDifficulty)
	fmt.Fprintf(&b, "pow.hashPowerMean=%v\n", cfg.HashPowerMean)
	fmt.Fprintf(&b, "bitcoin.maxBlockSize=%d\n", cfg.MaxBlockSize)
	fmt.Fprintf(&b, "attack.requiredConfirmations=%d\n", cfg.RequiredConfirmations)
	fmt.Fprintf(&b, "attack.minChainLength=%d\n", cfg.MinChainLength)
	fmt.Fprintf(&b, "attack.maxChainLength=%d\n", cfg.MaxChainLength)
	return os.WriteFile(path, []byte(b.String()), 0644)
}
