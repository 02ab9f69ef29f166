package fusion

import (
	"github.com/satryanta/geofuse/pkg"
	"gonum.org/v1/gonum/mat"
)

// Kalman is a 2-D constant-velocity filter over
// (lat, lon, dLat/dt, dLon/dt), everything in degrees and degrees/second.
// Measurement accuracy in meter converts with the flat approximation
// deg = m / 111320.
type Kalman struct {
	x *mat.VecDense // 4x1 state
	p *mat.Dense    // 4x4 covariance
	q *mat.Dense    // process noise

	lastTs      int64
	initialized bool
}

func NewKalman() *Kalman {
	q := mat.NewDense(4, 4, nil)
	q.Set(0, 0, 1e-6)
	q.Set(1, 1, 1e-6)
	q.Set(2, 2, 1e-3)
	q.Set(3, 3, 1e-3)
	return &Kalman{q: q}
}

func (k *Kalman) Initialized() bool {
	return k.initialized
}

// Init seeds the filter from the first fix. Initialisation happens at most
// once per session; Reset starts a new session.
func (k *Kalman) Init(ts int64, lat, lon, accM float64) {
	accDeg := accM / pkg.METER_PER_DEGREE
	k.x = mat.NewVecDense(4, []float64{lat, lon, 0, 0})
	k.p = mat.NewDense(4, 4, nil)
	k.p.Set(0, 0, accDeg*accDeg)
	k.p.Set(1, 1, accDeg*accDeg)
	k.p.Set(2, 2, 1)
	k.p.Set(3, 3, 1)
	k.lastTs = ts
	k.initialized = true
}

// Predict advances the state to ts with the constant-velocity transition.
// A non-positive step is a no-op returning the current position.
func (k *Kalman) Predict(ts int64) (float64, float64) {
	dt := float64(ts-k.lastTs) / 1000.0
	if dt <= 0 {
		return k.x.AtVec(0), k.x.AtVec(1)
	}
	k.lastTs = ts

	f := mat.NewDense(4, 4, []float64{
		1, 0, dt, 0,
		0, 1, 0, dt,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})

	var xNew mat.VecDense
	xNew.MulVec(f, k.x)
	k.x = &xNew

	var fp mat.Dense
	fp.Mul(f, k.p)
	var fpft mat.Dense
	fpft.Mul(&fp, f.T())
	fpft.Add(&fpft, k.q)
	k.p = &fpft

	return k.x.AtVec(0), k.x.AtVec(1)
}

// Update fuses the measurement (lat, lon) with noise R = (accDeg)^2 I. The
// 2x2 innovation covariance is inverted in closed form; a singular S keeps
// the predicted state.
func (k *Kalman) Update(lat, lon, accM float64) (float64, float64) {
	accDeg := accM / pkg.METER_PER_DEGREE
	r := accDeg * accDeg

	// y = z - H x
	y0 := lat - k.x.AtVec(0)
	y1 := lon - k.x.AtVec(1)

	// S = H P H^T + R; H selects the position block
	s00 := k.p.At(0, 0) + r
	s01 := k.p.At(0, 1)
	s10 := k.p.At(1, 0)
	s11 := k.p.At(1, 1) + r

	det := s00*s11 - s01*s10
	if det == 0 {
		return k.x.AtVec(0), k.x.AtVec(1)
	}
	i00 := s11 / det
	i01 := -s01 / det
	i10 := -s10 / det
	i11 := s00 / det

	// K = P H^T S^-1, a 4x2 gain
	pht := mat.NewDense(4, 2, nil)
	for i := 0; i < 4; i++ {
		pht.Set(i, 0, k.p.At(i, 0))
		pht.Set(i, 1, k.p.At(i, 1))
	}
	sInv := mat.NewDense(2, 2, []float64{i00, i01, i10, i11})
	var gain mat.Dense
	gain.Mul(pht, sInv)

	// x = x + K y
	for i := 0; i < 4; i++ {
		k.x.SetVec(i, k.x.AtVec(i)+gain.At(i, 0)*y0+gain.At(i, 1)*y1)
	}

	// P = (I - K H) P
	ikh := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		ikh.Set(i, i, 1)
	}
	for i := 0; i < 4; i++ {
		ikh.Set(i, 0, ikh.At(i, 0)-gain.At(i, 0))
		ikh.Set(i, 1, ikh.At(i, 1)-gain.At(i, 1))
	}
	var pNew mat.Dense
	pNew.Mul(ikh, k.p)
	k.p = &pNew

	return k.x.AtVec(0), k.x.AtVec(1)
}

// Position returns the current state estimate.
func (k *Kalman) Position() (float64, float64) {
	if !k.initialized {
		return 0, 0
	}
	return k.x.AtVec(0), k.x.AtVec(1)
}

// Covariance exposes P for diagnostics.
func (k *Kalman) Covariance() *mat.Dense {
	return k.p
}

func (k *Kalman) Reset() {
	k.x = nil
	k.p = nil
	k.lastTs = 0
	k.initialized = false
}
