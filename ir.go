package main

// IR instruction word format: a flat 32-bit encoding grouped the way the
// original bytecode's bit diagrams group theirs (load/store/arith/control
// transfer), though the exact field widths here are this front end's
// own concrete choice rather than a byte-for-byte port, since the
// reference diagrams vary width across their own revisions. The four
// groups, the register count, and the operator/condition enumerations
// below are ported directly.

type Insgrp uint8

const (
	IgLd Insgrp = iota
	IgSt
	IgAri
	IgCtl
)

type Ldins uint8

const (
	LdBas Ldins = iota
	LdShl
	LdTyp
	LdImm
)

type Typ uint8

const (
	TyU1 Typ = iota
	TyS1
	TyU2
	TyS2
	TyU4
	TyS4
	TyU8
	TyS8
	TyF4
	TyF8
)

type Mod uint8

const (
	Mreg Mod = iota
	Mimm
)

// Op enumerates the IR's own arithmetic opcodes. Named distinctly from
// the AST's Uop/Bop (ast.go) even though the operator sets overlap --
// the AST operators get lowered into these through bexpOp/emitUexp in
// irgen.go, they are never the same constant.
type Op uint8

const (
	IrNot Op = iota
	IrNeg
	IrUmin
	IrUpls
	IrShl
	IrShr
	IrXor
	IrOr
	IrAnd
	IrAdd
	IrSub
	IrMul
	IrDiv
	IrMod
)

type Ctins uint8

const (
	Ctbcc Ctins = iota
	Ctjmp
	Ctcal
	Ctret
)

type Cc uint8

const (
	Cz Cc = iota
	Ceq
	Cne
	Clt
	Cltu
	Cge
	Cgeu
)

// Iregcnt is the VM's fixed register-file size.
const Iregcnt = 16

// Field layout (MSB to LSB):
//   [31:30] grp   (2 bits, Insgrp)
//   [29:26] sub   (4 bits, Ldins/Ctins/Op depending on grp)
//   [25:22] typ   (4 bits, Typ)
//   [21:18] rd    (4 bits, destination register)
//   [17:0]  body  (18 bits, meaning depends on grp -- see below)
//
// Ld/St body:   [17:0] ofs (word offset into VM memory)
// Ari body:     [17] mod (Mreg=0 uses rs2, Mimm=1 uses imm)
//               [16:13] rs1
//               Mreg: [8:5] rs2, other bits unused
//               Mimm: [12:0] signed immediate
// Ctl body, Ctbcc: [17:15] cc, [14:11] rs1, [10:0] absolute branch target
// Ctl body, Ctjmp/Ctcal/Ctret: [17:0] target/arg (endSentinel marks "halt")

const (
	irGrpShift = 30
	irSubShift = 26
	irTypShift = 22
	irRdShift  = 18

	irGrpMask = 0x3
	irSubMask = 0xf
	irTypMask = 0xf
	irRdMask  = 0xf
	irBodyMask = 0x3ffff
)

func encLdSt(grp Insgrp, sub Ldins, ty Typ, rd uint8, ofs uint32) uint32 {
	return uint32(grp)<<irGrpShift | uint32(sub)<<irSubShift | uint32(ty)<<irTypShift |
		uint32(rd)<<irRdShift | (ofs & irBodyMask)
}

func encAriReg(ty Typ, rd uint8, op Op, rs1, rs2 uint8) uint32 {
	body := uint32(rs1)<<13 | uint32(rs2)<<5
	return uint32(IgAri)<<irGrpShift | uint32(op)<<irSubShift | uint32(ty)<<irTypShift |
		uint32(rd)<<irRdShift | body
}

func encAriImm(ty Typ, rd uint8, op Op, rs1 uint8, imm int32) uint32 {
	body := uint32(1)<<17 | uint32(rs1)<<13 | (uint32(imm) & 0x1fff)
	return uint32(IgAri)<<irGrpShift | uint32(op)<<irSubShift | uint32(ty)<<irTypShift |
		uint32(rd)<<irRdShift | body
}

func encBcc(ty Typ, rd uint8, cc Cc, rs1 uint8, target uint32) uint32 {
	body := uint32(cc)<<15 | uint32(rs1)<<11 | (target & 0x7ff)
	return uint32(IgCtl)<<irGrpShift | uint32(Ctbcc)<<irSubShift | uint32(ty)<<irTypShift |
		uint32(rd)<<irRdShift | body
}

func encJmp(target uint32) uint32 {
	return uint32(IgCtl)<<irGrpShift | uint32(Ctjmp)<<irSubShift | (target & irBodyMask)
}

// endSentinel is the all-ones body value marking program end, mirroring
// the original's ccofsmsk end-of-program sentinel.
const endSentinel = irBodyMask

func encHalt() uint32 {
	return uint32(IgCtl)<<irGrpShift | uint32(Ctcal)<<irSubShift | endSentinel
}

type decoded struct {
	grp  Insgrp
	sub  uint8
	ty   Typ
	rd   uint8
	body uint32
}

func decode(w uint32) decoded {
	return decoded{
		grp:  Insgrp((w >> irGrpShift) & irGrpMask),
		sub:  uint8((w >> irSubShift) & irSubMask),
		ty:   Typ((w >> irTypShift) & irTypMask),
		rd:   uint8((w >> irRdShift) & irRdMask),
		body: w & irBodyMask,
	}
}

func (d decoded) isHalt() bool {
	return d.grp == IgCtl && Ctins(d.sub) == Ctcal && d.body == endSentinel
}

func (d decoded) ariMod() Mod {
	if d.body&(1<<17) != 0 {
		return Mimm
	}
	return Mreg
}

func (d decoded) ariRs1() uint8 { return uint8((d.body >> 13) & 0xf) }
func (d decoded) ariImm() int32 {
	v := int32(d.body & 0x1fff)
	if v&0x1000 != 0 {
		v -= 0x2000
	}
	return v
}
func (d decoded) ariRs2() uint8 { return uint8((d.body >> 5) & 0xf) }

// bcc's low bits hold the absolute target instruction index, the way the
// reference while-loop program addresses both its branch and its jump by
// absolute pc rather than a relative displacement.
func (d decoded) bccCc() Cc     { return Cc((d.body >> 15) & 0x7) }
func (d decoded) bccRs1() uint8 { return uint8((d.body >> 11) & 0xf) }
func (d decoded) bccTarget() uint32 { return d.body & 0x7ff }

func (d decoded) jmpTarget() uint32 { return d.body }
func (d decoded) ldStOfs() uint32   { return d.body }
