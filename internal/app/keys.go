package app

// Key is a key name as SDL reports it (SDL_GetKeyName).
type Key string

// Bound keys.
const (
	KeyDeferred     Key = "D"
	KeyFlat         Key = "F"
	KeyCamera       Key = "C"
	KeyGBuffer      Key = "G"
	KeySunSky       Key = "S"
	KeyBlur         Key = "B"
	KeySkybox       Key = "E"
	KeyMirror       Key = "M"
	KeyExposureUp   Key = "Up"
	KeyExposureDown Key = "Down"
	KeyScreenshot   Key = "F12"
	KeyQuit         Key = "Escape"
)

// SpeedKeys select anim.SpeedOptions by position.
var SpeedKeys = []Key{"1", "2", "3", "4", "5", "6", "7"}

func speedIndex(k Key) (int, bool) {
	for i, sk := range SpeedKeys {
		if sk == k {
			return i, true
		}
	}
	return 0, false
}
