package macho

import "io"

// symtabCommand is LC_SYMTAB, fixed at 24 bytes regardless of container,
// and always written little-endian (spec §4.5, §6).
type symtabCommand struct {
	Symoff  uint32
	Nsyms   uint32
	Stroff  uint32
	Strsize uint32
}

func newSymtabCommand() symtabCommand {
	return symtabCommand{}
}

func (symtabCommand) cmdsize() int {
	return sizeofSymtabCommand
}

func (c symtabCommand) writeTo(w io.Writer) (int64, error) {
	var buf [sizeofSymtabCommand]byte
	leEndian.PutUint32(buf[0:4], lcSymtab)
	leEndian.PutUint32(buf[4:8], sizeofSymtabCommand)
	leEndian.PutUint32(buf[8:12], c.Symoff)
	leEndian.PutUint32(buf[12:16], c.Nsyms)
	leEndian.PutUint32(buf[16:20], c.Stroff)
	leEndian.PutUint32(buf[20:24], c.Strsize)
	n, err := w.Write(buf[:])
	return int64(n), err
}
