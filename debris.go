package rubble

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// cubeMesh appends a box with the given eight corners, ordered like
// cubeCorners, using flat axis normals.
func cubeMesh(m *Mesh, corners [8]mgl32.Vec3, color mgl32.Vec3) {
	for f, loop := range cubeFaceLoops {
		n := Face(f).Normal()
		m.addQuad(corners[loop[0]], corners[loop[1]], corners[loop[2]], corners[loop[3]], n, color)
	}
}

// spawnChips emits small jittered cubes thrown outward fast. Returns the count.
func spawnChips(cfg FractureConfig, center, color mgl32.Vec3, rng *Random, debris *Debris, source uuid.UUID) int {
	for i := 0; i < cfg.MicroParticles; i++ {
		fr := Fragment{
			Kind:     KindChip,
			Source:   source,
			Position: rng.Jitter(center, 0.4),
			Velocity: mgl32.Vec3{rng.Float(-2.5, 2.5), rng.Float(-0.3, 0.5), rng.Float(-2.5, 2.5)},
			Spin:     rng.Vec3(-0.5, 0.5),
			Color:    color,
		}

		hs := cfg.MicroSize * rng.Float(0.5, 1.5) * 0.5
		chipColor := varyColor(color, 0.65, 0.05, rng)

		var corners [8]mgl32.Vec3
		for k, c := range cubeCorners {
			corners[k] = rng.Jitter(c.Mul(hs), hs*0.3)
		}
		cubeMesh(&fr.Mesh, corners, chipColor)

		finishParticle(&fr, cfg.ChipLifetime, cfg.Eternal)
		debris.Spawn(fr)
	}
	return cfg.MicroParticles
}

// spawnDust emits a slow, soft-coloured puff of tiny cubes. Returns the count.
func spawnDust(cfg FractureConfig, center, color mgl32.Vec3, rng *Random, debris *Debris, source uuid.UUID) int {
	for i := 0; i < cfg.DustParticles; i++ {
		fr := Fragment{
			Kind:     KindDust,
			Source:   source,
			Position: rng.Jitter(center, 0.45),
			Velocity: mgl32.Vec3{rng.Float(-1, 1), rng.Float(0, 0.8), rng.Float(-1, 1)},
			Spin: mgl32.Vec3{
				rng.Float(-1, 1) * 0.2,
				rng.Float(-1, 1) * 0.2,
				rng.Float(-1, 1) * 0.2,
			},
			Color: color,
		}

		hs := cfg.DustSize * rng.Float(0.6, 1.4) * 0.5
		dustColor := varyColor(color, 0.8, 0.04, rng)

		var corners [8]mgl32.Vec3
		for k, c := range cubeCorners {
			corners[k] = c.Mul(hs)
		}
		cubeMesh(&fr.Mesh, corners, dustColor)

		finishParticle(&fr, cfg.DustLifetime, cfg.Eternal)
		debris.Spawn(fr)
	}
	return cfg.DustParticles
}

func finishParticle(fr *Fragment, lifetime float32, eternal bool) {
	fr.Scale = mgl32.Vec3{1, 1, 1}
	fr.MaxLifetime = lifetime
	fr.Eternal = eternal
	fr.Active = true
}
