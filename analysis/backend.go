package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/soniclibs/aria/algorithms/spectral"
)

// Transformer converts a time-domain frame into its complex spectrum. The
// CPU and GPU implementations must be numerically equivalent within
// floating-point tolerance for identical input; there is no implicit
// fallback from one to the other.
type Transformer interface {
	Transform(frame []float64) ([]complex128, error)
	Close() error
}

// NewTransformer builds the backend for the selected device. frameSize is
// fixed for the lifetime of the transformer.
func NewTransformer(device ComputingDevice, frameSize int) (Transformer, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %d", frameSize)
	}

	switch device {
	case Cpu:
		return &cpuTransformer{size: frameSize, fft: spectral.NewFFT()}, nil
	default:
		return newGPUTransformer(frameSize)
	}
}

// cpuTransformer runs the transform inline on the calling goroutine.
type cpuTransformer struct {
	size int
	fft  *spectral.FFT
}

func (c *cpuTransformer) Transform(frame []float64) ([]complex128, error) {
	if len(frame) != c.size {
		return nil, fmt.Errorf("frame length %d does not match transformer size %d", len(frame), c.size)
	}
	return c.fft.Compute(frame), nil
}

func (c *cpuTransformer) Close() error { return nil }

// gpuTransformer mimics an accelerator device: callers submit frames to a
// queue and await completion while a dedicated worker owns the transform
// kernel. The queue serializes concurrent submissions safely.
type gpuTransformer struct {
	size int
	jobs chan transformJob
}

type transformJob struct {
	frame []float64
	out   chan<- []complex128
}

const gpuQueueDepth = 64

func newGPUTransformer(frameSize int) (*gpuTransformer, error) {
	if frameSize&(frameSize-1) != 0 {
		return nil, fmt.Errorf("gpu backend requires a power-of-two frame size, got %d", frameSize)
	}

	g := &gpuTransformer{
		size: frameSize,
		jobs: make(chan transformJob, gpuQueueDepth),
	}
	go g.run()
	return g, nil
}

func (g *gpuTransformer) run() {
	plan := newRadix2Plan(g.size)
	for job := range g.jobs {
		job.out <- plan.execute(job.frame)
	}
}

// Transform submits the frame to the device queue and blocks until the
// spectrum is ready.
func (g *gpuTransformer) Transform(frame []float64) ([]complex128, error) {
	if len(frame) != g.size {
		return nil, fmt.Errorf("frame length %d does not match transformer size %d", len(frame), g.size)
	}

	out := make(chan []complex128, 1)
	g.jobs <- transformJob{frame: frame, out: out}
	return <-out, nil
}

// Close shuts down the submission queue. The transformer must not be used
// afterwards.
func (g *gpuTransformer) Close() error {
	close(g.jobs)
	return nil
}

// radix2Plan is an iterative decimation-in-time FFT with precomputed
// bit-reversal permutation and twiddle factors, the shape a batched
// accelerator kernel takes.
type radix2Plan struct {
	size    int
	rev     []int
	twiddle []complex128
}

func newRadix2Plan(n int) *radix2Plan {
	rev := make([]int, n)
	for i := 1; i < n; i++ {
		rev[i] = rev[i>>1] >> 1
		if i&1 == 1 {
			rev[i] |= n >> 1
		}
	}

	twiddle := make([]complex128, n/2)
	for i := range twiddle {
		angle := -2 * math.Pi * float64(i) / float64(n)
		twiddle[i] = cmplx.Exp(complex(0, angle))
	}

	return &radix2Plan{size: n, rev: rev, twiddle: twiddle}
}

func (p *radix2Plan) execute(frame []float64) []complex128 {
	n := p.size
	data := make([]complex128, n)
	for i := range data {
		data[i] = complex(frame[p.rev[i]], 0)
	}

	for length := 2; length <= n; length <<= 1 {
		half := length >> 1
		step := n / length
		for start := 0; start < n; start += length {
			for k := range half {
				w := p.twiddle[k*step]
				u := data[start+k]
				v := data[start+k+half] * w
				data[start+k] = u + v
				data[start+k+half] = u - v
			}
		}
	}

	return data
}
