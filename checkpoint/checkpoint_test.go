package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/particle"
	"github.com/shiblon/bigpso/rng"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/topology"
	"github.com/shiblon/bigpso/vec"
)

func newTestContext() *bigfloat.Context {
	ctx := bigfloat.NewContext(64, 8, bigfloat.CheckNever, 0)
	ctx.SetRandomSource(rng.New63(42, false, 0, "test-stream"))
	return ctx
}

func buildSwarm(ctx *bigfloat.Context, fn strategy.Function) ([]*particle.Particle, *topology.GBest) {
	topo := topology.NewGBest(ctx, 2, 2, topology.EachParticle, fn)
	p0 := particle.New(ctx, 0, fn, topo, vec.NewFromFloat64s(ctx, []float64{10, 0}), vec.NewFromFloat64s(ctx, []float64{0, 0}))
	p1 := particle.New(ctx, 1, fn, topo, vec.NewFromFloat64s(ctx, []float64{0, 10}), vec.NewFromFloat64s(ctx, []float64{0, 0}))
	return []*particle.Particle{p0, p1}, topo
}

func TestStoreLoadRoundTrip(t *testing.T) {
	ctx := newTestContext()
	fn := strategy.NewSphere(2)
	particles, topo := buildSwarm(ctx, fn)

	dir := t.TempDir()
	path := filepath.Join(dir, "run.backup")

	state := State{
		Step:      5,
		Particles: particles,
		Topology:  topo,
		TopoKind:  KindGBest,
		Source:    ctx.RandomSource(),
	}
	require.NoError(t, Store(ctx, path, state))

	ctx2 := bigfloat.NewContext(64, 8, bigfloat.CheckNever, 0)
	loaded, err := Load(ctx2, path, fn)
	require.NoError(t, err)
	require.Equal(t, 5, loaded.Step)
	require.Len(t, loaded.Particles, 2)

	ten := ctx2.FromFloat64(10)
	require.Equal(t, 0, ctx2.Compare(loaded.Particles[0].Position.E[0], ten),
		"particle 0 position[0] should round-trip to 10, got %s", ctx2.String(loaded.Particles[0].Position.E[0]))
}

// renderSwarm captures the textual rendering of every particle's vectors,
// the shape go-cmp compares structurally below: it is a proxy for full
// state equality that does not require exporting bigfloat.F's internals.
func renderSwarm(ctx *bigfloat.Context, particles []*particle.Particle) []string {
	out := make([]string, len(particles))
	for i, p := range particles {
		out[i] = p.String(ctx)
	}
	return out
}

func TestStoreLoadPreservesFullSwarmState(t *testing.T) {
	ctx := newTestContext()
	fn := strategy.NewSphere(2)
	particles, topo := buildSwarm(ctx, fn)
	want := renderSwarm(ctx, particles)

	dir := t.TempDir()
	path := filepath.Join(dir, "run.backup")
	state := State{Step: 3, Particles: particles, Topology: topo, TopoKind: KindGBest, Source: ctx.RandomSource()}
	require.NoError(t, Store(ctx, path, state))

	ctx2 := bigfloat.NewContext(64, 8, bigfloat.CheckNever, 0)
	loaded, err := Load(ctx2, path, fn)
	require.NoError(t, err)
	got := renderSwarm(ctx2, loaded.Particles)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("restored swarm state differs from the one that was stored (-want +got):\n%s", diff)
	}
}

func TestStorePreservesPreviousFileDuringWrite(t *testing.T) {
	ctx := newTestContext()
	fn := strategy.NewSphere(2)
	particles, topo := buildSwarm(ctx, fn)
	dir := t.TempDir()
	path := filepath.Join(dir, "run.backup")

	state := State{Step: 1, Particles: particles, Topology: topo, TopoKind: KindGBest, Source: ctx.RandomSource()}
	require.NoError(t, Store(ctx, path, state))
	state.Step = 2
	require.NoError(t, Store(ctx, path, state))

	_, err := os.Stat(path + "TMP")
	require.True(t, os.IsNotExist(err), "expected TMP file to be cleaned up, stat err = %v", err)
}

func TestVersionAtLeast(t *testing.T) {
	cases := []struct {
		v, min string
		want   bool
	}{
		{"1.0.0", "1.0.0", true},
		{"1.1.0", "1.0.0", true},
		{"0.9.0", "1.0.0", false},
		{"2.0.0", "1.9.9", true},
	}
	for _, c := range cases {
		require.Equal(t, c.want, versionAtLeast(c.v, c.min), "versionAtLeast(%q, %q)", c.v, c.min)
	}
}
