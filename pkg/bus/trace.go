package bus

import (
	"log"

	"github.com/herlein/gosabre/pkg/registers"
)

type traced struct {
	bus registers.Bus
	msg *log.Logger
}

// Trace logs every register transfer on b
func Trace(b registers.Bus, msg *log.Logger) registers.Bus {
	return &traced{bus: b, msg: msg}
}

func (t *traced) ReadReg(addr uint8) (uint8, error) {
	v, err := t.bus.ReadReg(addr)
	if err != nil {
		t.msg.Printf("R 0x%02X: %v", addr, err)
		return v, err
	}
	t.msg.Printf("R 0x%02X -> 0x%02X", addr, v)
	return v, nil
}

func (t *traced) WriteReg(addr, value uint8) error {
	err := t.bus.WriteReg(addr, value)
	if err != nil {
		t.msg.Printf("W 0x%02X <- 0x%02X: %v", addr, value, err)
		return err
	}
	t.msg.Printf("W 0x%02X <- 0x%02X", addr, value)
	return nil
}
