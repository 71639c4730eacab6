/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// primitiveCollector gathers the prefix columns of a line. Only the primitive
// appenders are needed by the time, caller and level encoders.
type primitiveCollector struct {
	elems []any
}

func (s *primitiveCollector) reset() {
	s.elems = s.elems[:0]
}

func (s *primitiveCollector) AppendBool(v bool)              { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendByteString(v []byte)      { s.elems = append(s.elems, string(v)) }
func (s *primitiveCollector) AppendComplex128(v complex128)  { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendComplex64(v complex64)    { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendDuration(v time.Duration) { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendFloat64(v float64)        { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendFloat32(v float32)        { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendInt(v int)                { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendInt64(v int64)            { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendInt32(v int32)            { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendInt16(v int16)            { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendInt8(v int8)              { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendString(v string)          { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendTime(v time.Time)         { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendUint(v uint)              { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendUint64(v uint64)          { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendUint32(v uint32)          { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendUint16(v uint16)          { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendUint8(v uint8)            { s.elems = append(s.elems, v) }
func (s *primitiveCollector) AppendUintptr(v uintptr)        { s.elems = append(s.elems, v) }

func singleLetterLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	single := "U"

	switch l {
	case zapcore.DebugLevel:
		single = "D"
	case zapcore.InfoLevel:
		single = "I"
	case zapcore.WarnLevel:
		single = "W"
	case zapcore.ErrorLevel:
		single = "E"
	case zapcore.DPanicLevel, zapcore.PanicLevel:
		single = "P"
	case zapcore.FatalLevel:
		single = "F"
	}

	enc.AppendString(single)
}

// juiceEncoder writes <date> <caller:line> <pid> <level>] <message> <fields>
type juiceEncoder struct {
	zapcore.Encoder
	cfg zapcore.EncoderConfig

	pool       buffer.Pool
	collectors *sync.Pool
	pid        int
}

func NewJuiceEncoder(cfg zapcore.EncoderConfig) (zapcore.Encoder, error) {
	cfg.ConsoleSeparator = " "
	cfg.EncodeLevel = singleLetterLevelEncoder

	// Only structured fields go through the JSON encoder, the prefix columns
	// are written by EncodeEntry.
	fieldsCfg := cfg
	fieldsCfg.TimeKey = ""
	fieldsCfg.LevelKey = ""
	fieldsCfg.NameKey = ""
	fieldsCfg.CallerKey = ""
	fieldsCfg.FunctionKey = ""
	fieldsCfg.MessageKey = ""
	fieldsCfg.StacktraceKey = ""

	return newJuiceEncoder(cfg, zapcore.NewJSONEncoder(fieldsCfg)), nil
}

func newJuiceEncoder(cfg zapcore.EncoderConfig, fields zapcore.Encoder) *juiceEncoder {
	return &juiceEncoder{
		Encoder: fields,
		cfg:     cfg,
		pool:    buffer.NewPool(),
		collectors: &sync.Pool{
			New: func() any {
				return &primitiveCollector{}
			},
		},
		pid: os.Getpid(),
	}
}

func (c *juiceEncoder) Clone() zapcore.Encoder {
	clone := *c
	clone.Encoder = c.Encoder.Clone()
	return &clone
}

func (c *juiceEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := c.pool.Get()

	arr := c.collectors.Get().(*primitiveCollector)
	defer func() {
		arr.reset()
		c.collectors.Put(arr)
	}()

	if c.cfg.EncodeTime != nil {
		c.cfg.EncodeTime(ent.Time, arr)
	}

	if ent.Caller.Defined && c.cfg.EncodeCaller != nil {
		c.cfg.EncodeCaller(ent.Caller, arr)
	}

	arr.AppendInt(c.pid)

	c.cfg.EncodeLevel(ent.Level, arr)

	for i := range arr.elems {
		if i > 0 {
			line.AppendString(c.cfg.ConsoleSeparator)
		}
		fmt.Fprint(line, arr.elems[i])
	}

	line.AppendByte(']')
	line.AppendByte(' ')
	line.AppendString(ent.Message)

	if len(fields) > 0 {
		encoded, err := c.Encoder.EncodeEntry(zapcore.Entry{}, fields)
		if err != nil {
			return nil, err
		}
		line.AppendByte(' ')
		line.AppendString(string(trimLineEnding(encoded.Bytes())))
		encoded.Free()
	}

	line.AppendString(c.cfg.LineEnding)
	return line, nil
}

func trimLineEnding(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
