//go:build !tinygo && !(linux && rpi)

package hal

func newHostPins(cfg HostConfig, _ LED) hostPins {
	return simulatedPins(cfg)
}
