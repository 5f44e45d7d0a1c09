package bus

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/gousb"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/herlein/gosabre/pkg/mcp2221"
	"github.com/herlein/gosabre/pkg/registers"
)

// Port is an opened bus. It hands out register devices by address; all of
// them share the bus and are invalid once the Port is closed.
type Port interface {
	Device(addr uint16) registers.Bus
	String() string
	io.Closer
}

// NameUsage documents the bus names accepted by Open
const NameUsage = `Bus name. Formats:
    "i2c:<name>"      - periph I2C bus, e.g. "i2c:1" or "i2c:" for the first
    "smbus:<n>"       - Linux /dev/i2c-<n> through SMBus transfers
    "mcp2221:<sel>"   - MCP2221A USB bridge, selector "", "#N", "bus:addr" or serial
    "uart:<tty>[@baud]" - SC18IM700 UART bridge, e.g. "uart:/dev/ttyUSB0@115200"
    A name without a scheme is a periph I2C bus name.`

// ParseName splits a bus name into scheme and argument
func ParseName(name string) (scheme, arg string) {
	scheme, arg, ok := strings.Cut(name, ":")
	switch {
	case !ok:
		return "i2c", name
	case scheme == "i2c" || scheme == "smbus" || scheme == "mcp2221" || scheme == "uart":
		return scheme, arg
	default:
		// A colon that is not a known scheme belongs to the bus name.
		return "i2c", name
	}
}

// Open opens the bus called name, see NameUsage
func Open(name string) (Port, error) {
	scheme, arg := ParseName(name)
	switch scheme {
	case "smbus":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("bus: invalid smbus adapter number %q", arg)
		}
		return openSMBus(n)

	case "mcp2221":
		ctx := gousb.NewContext()
		dev, err := mcp2221.SelectDevice(ctx, mcp2221.DeviceSelector(arg))
		if err != nil {
			ctx.Close()
			return nil, fmt.Errorf("bus: %w", err)
		}
		return &i2cPort{bus: dev, name: "mcp2221:" + dev.Serial, closers: []io.Closer{ctx}}, nil

	case "uart":
		dev, baud := arg, 0
		if i := strings.LastIndexByte(arg, '@'); i >= 0 {
			var err error
			dev = arg[:i]
			if baud, err = strconv.Atoi(arg[i+1:]); err != nil {
				return nil, fmt.Errorf("bus: invalid baud rate in %q", arg)
			}
		}
		b, err := OpenSC18IM700(dev, baud)
		if err != nil {
			return nil, fmt.Errorf("bus: %w", err)
		}
		return &i2cPort{bus: b, name: b.String()}, nil

	default:
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("bus: %w", err)
		}
		b, err := i2creg.Open(arg)
		if err != nil {
			return nil, fmt.Errorf("bus: %w", err)
		}
		return &i2cPort{bus: b, name: b.String()}, nil
	}
}

// i2cPort hands out I2C register devices on a shared i2c.Bus
type i2cPort struct {
	bus     i2c.BusCloser
	name    string
	closers []io.Closer // Released after the bus
}

// NewPort wraps an already opened periph bus
func NewPort(b i2c.BusCloser) Port {
	return &i2cPort{bus: b, name: b.String()}
}

func (p *i2cPort) Device(addr uint16) registers.Bus {
	return NewI2C(p.bus, addr)
}

func (p *i2cPort) String() string { return p.name }

func (p *i2cPort) Close() error {
	err := p.bus.Close()
	for _, c := range p.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
