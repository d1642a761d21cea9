package weapon

import "sort"

// DefaultReloadTime applies to every preset.
const DefaultReloadTime = 2.0

var (
	ClassAK47 = Class{
		Name: "AK-47", Type: TypeRifle, Mode: ModeAuto,
		Damage: 36, FireInterval: 0.1, Accuracy: 0.75, Range: 150, Recoil: 1.5,
		Magazine: 30, Reserve: 90, ReloadTime: DefaultReloadTime,
	}
	ClassM4A1 = Class{
		Name: "M4A1", Type: TypeRifle, Mode: ModeAuto,
		Damage: 31, FireInterval: 0.09, Accuracy: 0.85, Range: 140, Recoil: 1.2,
		Magazine: 30, Reserve: 90, ReloadTime: DefaultReloadTime,
	}
	ClassAWP = Class{
		Name: "AWP", Type: TypeSniper, Mode: ModeSingle,
		Damage: 115, FireInterval: 1.5, Accuracy: 0.95, Range: 300, Recoil: 3.0,
		Magazine: 10, Reserve: 30, ReloadTime: DefaultReloadTime,
	}
	ClassGlock18 = Class{
		Name: "Glock-18", Type: TypePistol, Mode: ModeSingle,
		Damage: 28, FireInterval: 0.15, Accuracy: 0.8, Range: 80, Recoil: 0.8,
		Magazine: 20, Reserve: 120, ReloadTime: DefaultReloadTime,
	}
	ClassUSPS = Class{
		Name: "USP-S", Type: TypePistol, Mode: ModeSingle,
		Damage: 35, FireInterval: 0.2, Accuracy: 0.9, Range: 90, Recoil: 0.6,
		Magazine: 12, Reserve: 100, ReloadTime: DefaultReloadTime,
	}
	ClassPlasmaRifle = Class{
		Name: "Cybor Plasma Rifle", Type: TypePlasma, Mode: ModeEnhanced,
		Damage: 45, FireInterval: 0.08, Accuracy: 0.92, Range: 200, Recoil: 0.5,
		Magazine: 40, Reserve: 120, ReloadTime: DefaultReloadTime, Enhanced: true,
	}
	ClassRailgun = Class{
		Name: "Cybor Railgun", Type: TypeRailgun, Mode: ModeEnhanced,
		Damage: 150, FireInterval: 2.0, Accuracy: 0.98, Range: 500, Recoil: 2.5,
		Magazine: 5, Reserve: 20, ReloadTime: DefaultReloadTime, Enhanced: true,
	}
)

var presets = map[string]Class{
	ClassAK47.Name:        ClassAK47,
	ClassM4A1.Name:        ClassM4A1,
	ClassAWP.Name:         ClassAWP,
	ClassGlock18.Name:     ClassGlock18,
	ClassUSPS.Name:        ClassUSPS,
	ClassPlasmaRifle.Name: ClassPlasmaRifle,
	ClassRailgun.Name:     ClassRailgun,
}

// Lookup returns the preset with the given name.
func Lookup(name string) (Class, bool) {
	c, ok := presets[name]
	return c, ok
}

// PresetNames lists every preset name in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Reach returns the effective range of the named preset, or fallback when the
// name is unknown.
func Reach(name string, fallback float64) float64 {
	if c, ok := presets[name]; ok {
		return c.Range
	}
	return fallback
}
