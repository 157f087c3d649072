package rubble

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RetireReason says why a fragment left the simulation during a step.
type RetireReason int

const (
	RetireNone RetireReason = iota
	RetireExpired
	RetireFellOut
)

func (r RetireReason) String() string {
	switch r {
	case RetireExpired:
		return "expired"
	case RetireFellOut:
		return "fell_out"
	default:
		return "none"
	}
}

const (
	bounceThreshold   = 0.3
	impactScrub       = 0.7
	impactSpinDamping = 0.5
	dragMinSpeed      = 0.001
	spinTransferSpeed = 0.1
	frictionRate      = 15.0
	contactHalfRatio  = 0.3
)

// PhysicsWorld integrates fragments against the ground plane and the block
// grid. It holds no per-fragment state.
type PhysicsWorld struct {
	cfg PhysicsConfig
}

func NewPhysicsWorld(cfg PhysicsConfig) *PhysicsWorld {
	return &PhysicsWorld{cfg: cfg}
}

func (p *PhysicsWorld) Config() PhysicsConfig {
	return p.cfg
}

// Integrate advances one active fragment by dt seconds and reports whether
// it retired. A retired fragment is flagged inactive; removal is left to
// Debris.Compact. world may be nil, in which case only the ground plane
// collides.
func (p *PhysicsWorld) Integrate(fr *Fragment, world *World, dt float32) RetireReason {
	if !fr.Active {
		return RetireNone
	}

	p.applyGravity(&fr.Velocity, dt)
	p.applyDrag(&fr.Velocity, dt)

	fr.Position = fr.Position.Add(fr.Velocity.Mul(dt))

	size := fr.Size()
	grounded := p.resolveGround(fr, size)
	if p.resolveBlocks(fr, world, size) {
		grounded = true
	}

	if grounded {
		p.applyFriction(fr, dt)
	}

	fr.Rotation = fr.Rotation.Add(fr.Spin.Mul(dt))

	if grounded && fr.Velocity.Len() < p.cfg.MinVelocity && fr.Spin.Len() < p.cfg.MinAngular {
		fr.Velocity = mgl32.Vec3{}
		fr.Spin = mgl32.Vec3{}
	}

	if !fr.Eternal {
		fr.Lifetime += dt
		if fr.Lifetime >= fr.MaxLifetime {
			fr.Active = false
			return RetireExpired
		}
	}
	if fr.Position.Y() < p.cfg.KillFloor {
		fr.Active = false
		return RetireFellOut
	}
	return RetireNone
}

func (p *PhysicsWorld) applyGravity(vel *mgl32.Vec3, dt float32) {
	vel[1] -= p.cfg.Gravity * dt
	if vel[1] < -p.cfg.TerminalVelocity {
		vel[1] = -p.cfg.TerminalVelocity
	}
}

// applyDrag decelerates along the velocity by drag*speed^2*dt without ever
// reversing direction.
func (p *PhysicsWorld) applyDrag(vel *mgl32.Vec3, dt float32) {
	speed := vel.Len()
	if speed < dragMinSpeed {
		return
	}
	decel := p.cfg.AirDrag * speed * speed * dt
	if decel > speed {
		decel = speed
	}
	*vel = vel.Sub(vel.Mul(decel / speed))
}

func (p *PhysicsWorld) applyFriction(fr *Fragment, dt float32) {
	friction := p.cfg.GroundFriction * dt * frictionRate
	if friction > 1 {
		friction = 1
	}
	fr.Velocity[0] *= 1 - friction
	fr.Velocity[2] *= 1 - friction
	fr.Spin = fr.Spin.Mul(p.cfg.AngularDamping)
}

// resolveGround clamps the fragment onto the ground plane and reports contact.
func (p *PhysicsWorld) resolveGround(fr *Fragment, size float32) bool {
	level := p.cfg.GroundY + size*0.5
	if fr.Position.Y() > level {
		return false
	}
	fr.Position[1] = level
	p.landing(fr)
	return true
}

// landing applies the vertical contact rule shared by the ground plane and
// block tops: a hard impact bounces with damping and converts some
// horizontal speed into spin, a soft one just stops vertical motion.
func (p *PhysicsWorld) landing(fr *Fragment) {
	if fr.Velocity.Y() >= -bounceThreshold {
		fr.Velocity[1] = 0
		return
	}
	fr.Velocity[1] = -fr.Velocity.Y() * p.cfg.BounceDamping
	fr.Velocity[0] *= impactScrub
	fr.Velocity[2] *= impactScrub
	fr.Spin = fr.Spin.Mul(impactSpinDamping)
	p.transferSpin(fr)
	p.clampSpin(&fr.Spin)
}

// transferSpin turns horizontal speed left after a vertical impact into roll.
func (p *PhysicsWorld) transferSpin(fr *Fragment) {
	h := float32(math.Hypot(float64(fr.Velocity.X()), float64(fr.Velocity.Z())))
	if h > spinTransferSpeed {
		fr.Spin[0] += fr.Velocity.Z() * p.cfg.SpinTransfer
		fr.Spin[2] -= fr.Velocity.X() * p.cfg.SpinTransfer
	}
}

// resolveBlocks pushes the fragment out of the first overlapping active block
// in its 3x3x3 neighbourhood along the axis of least penetration. It reports
// true only when the fragment came to rest on top of a block.
func (p *PhysicsWorld) resolveBlocks(fr *Fragment, world *World, size float32) bool {
	if world == nil || world.Grid == nil {
		return false
	}
	const h = BlockSize * 0.5
	hr := size * contactHalfRatio
	pos := &fr.Position
	c := VoxelCoord(*pos)

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				_, b := world.activeBlockAt(c[0]+dx, c[1]+dy, c[2]+dz)
				if b == nil {
					continue
				}
				bp := b.Position
				if !(pos.X()+hr > bp.X()-h && pos.X()-hr < bp.X()+h &&
					pos.Y()+hr > bp.Y()-h && pos.Y()-hr < bp.Y()+h &&
					pos.Z()+hr > bp.Z()-h && pos.Z()-hr < bp.Z()+h) {
					continue
				}

				ox := min(pos.X()+hr-(bp.X()-h), bp.X()+h-(pos.X()-hr))
				oy := min(pos.Y()+hr-(bp.Y()-h), bp.Y()+h-(pos.Y()-hr))
				oz := min(pos.Z()+hr-(bp.Z()-h), bp.Z()+h-(pos.Z()-hr))

				landed := false
				switch {
				case ox < oy && ox < oz:
					if pos.X() < bp.X() {
						pos[0] = bp.X() - h - hr
					} else {
						pos[0] = bp.X() + h + hr
					}
					fr.Velocity[0] = -fr.Velocity.X() * p.cfg.BounceDamping
					fr.Spin[1] += fr.Velocity.X() * p.cfg.SpinTransfer
				case oy < oz:
					if pos.Y() < bp.Y() {
						pos[1] = bp.Y() - h - hr
						fr.Velocity[1] = -fr.Velocity.Y() * p.cfg.BounceDamping
						fr.Velocity[0] *= impactScrub
						fr.Velocity[2] *= impactScrub
						fr.Spin = fr.Spin.Mul(impactSpinDamping)
						p.transferSpin(fr)
					} else {
						pos[1] = bp.Y() + h + hr
						p.landing(fr)
						landed = true
					}
				default:
					if pos.Z() < bp.Z() {
						pos[2] = bp.Z() - h - hr
					} else {
						pos[2] = bp.Z() + h + hr
					}
					fr.Velocity[2] = -fr.Velocity.Z() * p.cfg.BounceDamping
					fr.Spin[1] -= fr.Velocity.Z() * p.cfg.SpinTransfer
				}
				p.clampSpin(&fr.Spin)
				return landed
			}
		}
	}
	return false
}

func (p *PhysicsWorld) clampSpin(spin *mgl32.Vec3) {
	m := p.cfg.MaxAngularSpeed
	for i := range spin {
		spin[i] = mgl32.Clamp(spin[i], -m, m)
	}
}
