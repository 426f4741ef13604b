package layout

import (
	"fortio.org/safecast"

	"wlbind/internal/ir"
)

// Compute lays out the shared type table of proto. Every message must be
// normalized and reference-resolved. Messages without any interface slot
// share the null run at index 0; the others get consecutive ranges after it,
// in interface, request, event order. The results are stored on proto and
// its messages.
func Compute(proto *ir.Protocol) error {
	if proto == nil {
		return nil
	}

	// первый проход: классификация и длина null-run
	nullRun := 0
	for iface, m := range proto.Messages() {
		slots, err := messageSlots(proto, iface, m)
		if err != nil {
			return err
		}
		m.Slots = slots
		m.AllNull = allNull(slots)
		if m.AllNull && len(slots) > nullRun {
			nullRun = len(slots)
		}
	}

	table := make([]*ir.Ref, nullRun, nullRun+8)
	offset := 0
	for iface, m := range proto.Messages() {
		if m.AllNull {
			m.TypeIndex = 0
			continue
		}
		idx := nullRun + offset
		if _, err := safecast.Conv[uint32](idx + len(m.Slots)); err != nil {
			return &LayoutError{
				Kind:      LayoutErrIndexOverflow,
				Protocol:  proto.Name,
				Interface: iface.Name,
				Message:   m.Name,
				Err:       err,
			}
		}
		m.TypeIndex = idx
		offset += len(m.Slots)
		table = append(table, m.Slots...)
	}

	proto.NullRunLength = nullRun
	proto.TypeTable = table
	return nil
}

// messageSlots builds [return] followed by one slot per argument.
func messageSlots(proto *ir.Protocol, iface *ir.Interface, m *ir.Message) ([]*ir.Ref, error) {
	slots := make([]*ir.Ref, 0, m.SlotCount())
	if m.Return != nil {
		ref, err := slotOf(proto, iface, m, m.Return)
		if err != nil {
			return nil, err
		}
		slots = append(slots, ref)
	}
	for _, arg := range m.Args {
		ref, err := slotOf(proto, iface, m, arg)
		if err != nil {
			return nil, err
		}
		slots = append(slots, ref)
	}
	return slots, nil
}

func slotOf(proto *ir.Protocol, iface *ir.Interface, m *ir.Message, arg *ir.Argument) (*ir.Ref, error) {
	if !arg.Kind.AllowsInterface() || arg.Interface == "" {
		return nil, nil
	}
	if arg.ResolvedInterface == nil {
		return nil, &LayoutError{
			Kind:      LayoutErrUnresolved,
			Protocol:  proto.Name,
			Interface: iface.Name,
			Message:   m.Name,
			Argument:  arg.Name,
		}
	}
	return arg.ResolvedInterface, nil
}

func allNull(slots []*ir.Ref) bool {
	for _, s := range slots {
		if s != nil {
			return false
		}
	}
	return true
}
