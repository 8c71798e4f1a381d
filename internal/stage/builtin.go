package stage

import (
	"time"

	"marionette/internal/models"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Builtin is the default panda rig, used when no asset is configured.
func Builtin() []Clip {
	return []Clip{
		{models.ClipName("CharacterArmature|Idle"), ms(2500)},
		{models.ClipName("CharacterArmature|Wave"), ms(1667)},
		{models.ClipName("CharacterArmature|Yes"), ms(1250)},
		{models.ClipName("CharacterArmature|No"), ms(1250)},
		{models.ClipName("CharacterArmature|Walk"), ms(1042)},
		{models.ClipName("CharacterArmature|Run"), ms(708)},
		{models.ClipName("CharacterArmature|Jump"), ms(1375)},
		{models.ClipName("CharacterArmature|Duck"), ms(1583)},
		{models.ClipName("CharacterArmature|Punch"), ms(958)},
		{models.ClipName("CharacterArmature|Sword"), ms(1167)},
		{models.ClipName("CharacterArmature|HitReact"), ms(833)},
		{models.ClipName("CharacterArmature|Death"), ms(2042)},
		{models.ClipName("CharacterArmature|Assembly"), ms(3000)},
		{models.ClipName("CharacterArmature|Chop"), ms(1500)},
		{models.ClipName("CharacterArmature|Pan"), ms(2667)},
		{models.ClipName("CharacterArmature|Eating"), ms(2083)},
		{models.ClipName("CharacterArmature|Sitting_Start"), ms(1250)},
		{models.ClipName("CharacterArmature|Sitting_Idle"), ms(3000)},
		{models.ClipName("CharacterArmature|Sitting_End"), ms(1250)},
	}
}
