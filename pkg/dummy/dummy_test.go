package dummy

import (
	"errors"
	"testing"

	"github.com/dougsko/rigd/pkg/rig"
)

func openDummy(t *testing.T) *rig.Handle {
	t.Helper()
	h, err := rig.New(rig.NewRegistry(), ModelDummy)
	if err != nil {
		t.Fatalf("Failed to create handle: %v", err)
	}
	if err := h.Open(nil); err != nil {
		t.Fatalf("Failed to open handle: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestDummyRadio(t *testing.T) {
	h := openDummy(t)

	t.Run("Defaults", func(t *testing.T) {
		vfo, err := h.GetVFO()
		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if vfo != rig.VFOA {
			t.Errorf("Expected VFOA, got %s", vfo)
		}

		freq, err := h.GetFreq(rig.VFOCurrent)
		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if freq != DefaultFreqA {
			t.Errorf("Expected %d, got %d", DefaultFreqA, freq)
		}
	})

	t.Run("Frequency Per VFO", func(t *testing.T) {
		if err := h.SetFreq(rig.VFOB, 3573000); err != nil {
			t.Fatalf("Failed to set frequency: %v", err)
		}

		freq, _ := h.GetFreq(rig.VFOB)
		if freq != 3573000 {
			t.Errorf("Expected 3573000 on VFOB, got %d", freq)
		}
		freq, _ = h.GetFreq(rig.VFOA)
		if freq != DefaultFreqA {
			t.Errorf("Expected VFOA unchanged, got %d", freq)
		}
		vfo, _ := h.GetVFO()
		if vfo != rig.VFOA {
			t.Errorf("Expected VFOA restored, got %s", vfo)
		}
	})

	t.Run("Mode And Passband", func(t *testing.T) {
		if err := h.SetMode(rig.VFOCurrent, rig.ModeCW, rig.PassbandNormal); err != nil {
			t.Fatalf("Failed to set mode: %v", err)
		}
		mode, width, err := h.GetMode(rig.VFOCurrent)
		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if mode != rig.ModeCW || width != 500 {
			t.Errorf("Expected CW/500, got %s/%d", mode, width)
		}

		err = h.SetMode(rig.VFOCurrent, rig.ModeDSTAR, rig.PassbandNormal)
		if !errors.Is(err, rig.ErrUnsupported) {
			t.Errorf("Expected ErrUnsupported, got %v", err)
		}
	})

	t.Run("PTT", func(t *testing.T) {
		if err := h.SetPTT(rig.VFOCurrent, true); err != nil {
			t.Fatalf("Failed to set PTT: %v", err)
		}
		on, _ := h.GetPTT(rig.VFOCurrent)
		if !on {
			t.Error("Expected PTT on")
		}
		dcd, _ := h.GetDCD(rig.VFOCurrent)
		if dcd {
			t.Error("Expected squelch closed while transmitting")
		}
		h.SetPTT(rig.VFOCurrent, false)
	})

	t.Run("Levels And Funcs", func(t *testing.T) {
		if err := h.SetLevel(rig.VFOCurrent, rig.LevelRFPower, rig.Value{F: 0.25}); err != nil {
			t.Fatalf("Failed to set level: %v", err)
		}
		v, _ := h.GetLevel(rig.VFOCurrent, rig.LevelRFPower)
		if v.F != 0.25 {
			t.Errorf("Expected 0.25, got %f", v.F)
		}

		err := h.SetLevel(rig.VFOCurrent, rig.LevelRFPower, rig.Value{F: 1.5})
		if !errors.Is(err, rig.ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}

		h.SetFunc(rig.VFOCurrent, rig.FuncNB, true)
		on, _ := h.GetFunc(rig.VFOCurrent, rig.FuncNB)
		if !on {
			t.Error("Expected NB on")
		}
	})

	t.Run("Split", func(t *testing.T) {
		h.SetSplitVFO(rig.VFOCurrent, true, rig.VFOB)
		h.SetSplitFreq(rig.VFOCurrent, 14080000)

		split, tx, _ := h.GetSplitVFO(rig.VFOCurrent)
		if !split || tx != rig.VFOB {
			t.Errorf("Expected split on VFOB, got %t %s", split, tx)
		}
		freq, _ := h.GetFreq(rig.VFOB)
		if freq != 14080000 {
			t.Errorf("Expected VFOB at 14080000, got %d", freq)
		}
	})

	t.Run("Memory", func(t *testing.T) {
		h.SetFreq(rig.VFOA, 10136000)
		h.SetMem(rig.VFOCurrent, 5)
		if err := h.VFOOp(rig.VFOCurrent, rig.OpFromVFO); err != nil {
			t.Fatalf("Failed to store memory: %v", err)
		}
		h.SetFreq(rig.VFOA, 7074000)
		if err := h.VFOOp(rig.VFOCurrent, rig.OpToVFO); err != nil {
			t.Fatalf("Failed to recall memory: %v", err)
		}
		freq, _ := h.GetFreq(rig.VFOA)
		if freq != 10136000 {
			t.Errorf("Expected 10136000, got %d", freq)
		}

		h.VFOOp(rig.VFOCurrent, rig.OpMCL)
		err := h.VFOOp(rig.VFOCurrent, rig.OpToVFO)
		if !errors.Is(err, rig.ErrRejected) {
			t.Errorf("Expected ErrRejected for an empty channel, got %v", err)
		}
	})

	t.Run("Conf", func(t *testing.T) {
		if err := h.SetConf(ConfMagic, "QRP"); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		val, _ := h.GetConf(ConfMagic)
		if val != "QRP" {
			t.Errorf("Expected QRP, got %s", val)
		}
		if err := h.SetConf("bogus", "1"); !errors.Is(err, rig.ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestDummyHasNoEvents(t *testing.T) {
	h := openDummy(t)

	n, err := h.DecodeEvent(0)
	if err != nil || n != 0 {
		t.Errorf("Expected no events, got %d, %v", n, err)
	}
	if h.Caps().Has(rig.CapTransceive) {
		t.Error("Dummy should not advertise transceive")
	}
}

func TestDummyHandlesAreIndependent(t *testing.T) {
	a := openDummy(t)
	b := openDummy(t)

	a.SetFreq(rig.VFOCurrent, 21074000)
	freq, _ := b.GetFreq(rig.VFOCurrent)
	if freq != DefaultFreqA {
		t.Errorf("Expected second handle unchanged, got %d", freq)
	}
}
