package plcopen

import "encoding/xml"

// Namespace is the PLCopen TC6 XML namespace written on POU documents.
const Namespace = "http://www.plcopen.org/xml/tc6_0201"

// Position is an absolute or relative point in diagram coordinates.
type Position struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}

// Connection references the output a wire comes from. Positions run from the
// receiving connection point back to the emitting one, bend points included.
type Connection struct {
	RefLocalID      int        `xml:"refLocalId,attr"`
	FormalParameter string     `xml:"formalParameter,attr,omitempty"`
	Positions       []Position `xml:"position"`
}

// ConnectionPointIn is an input connector and the wires entering it.
type ConnectionPointIn struct {
	RelPosition Position     `xml:"relPosition"`
	Connections []Connection `xml:"connection"`
}

// ConnectionPointOut is an output connector.
type ConnectionPointOut struct {
	FormalParameter string   `xml:"formalParameter,attr,omitempty"`
	RelPosition     Position `xml:"relPosition"`
}

// Element is one graphical object of an LD body.
type Element interface {
	ID() int
}

// LeftPowerRail is the power source of a rung.
type LeftPowerRail struct {
	XMLName  xml.Name             `xml:"leftPowerRail"`
	LocalID  int                  `xml:"localId,attr"`
	Width    float64              `xml:"width,attr"`
	Height   float64              `xml:"height,attr"`
	Position Position             `xml:"position"`
	Out      []ConnectionPointOut `xml:"connectionPointOut"`
}

// RightPowerRail is the power return of a rung.
type RightPowerRail struct {
	XMLName  xml.Name            `xml:"rightPowerRail"`
	LocalID  int                 `xml:"localId,attr"`
	Width    float64             `xml:"width,attr"`
	Height   float64             `xml:"height,attr"`
	Position Position            `xml:"position"`
	In       []ConnectionPointIn `xml:"connectionPointIn"`
}

// Contact reads a boolean variable.
type Contact struct {
	XMLName  xml.Name           `xml:"contact"`
	LocalID  int                `xml:"localId,attr"`
	Negated  bool               `xml:"negated,attr"`
	Edge     string             `xml:"edge,attr"`
	Width    float64            `xml:"width,attr"`
	Height   float64            `xml:"height,attr"`
	Position Position           `xml:"position"`
	In       ConnectionPointIn  `xml:"connectionPointIn"`
	Out      ConnectionPointOut `xml:"connectionPointOut"`
	Variable string             `xml:"variable"`
}

// Coil writes a boolean variable.
type Coil struct {
	XMLName  xml.Name           `xml:"coil"`
	LocalID  int                `xml:"localId,attr"`
	Negated  bool               `xml:"negated,attr"`
	Edge     string             `xml:"edge,attr"`
	Storage  string             `xml:"storage,attr"`
	Width    float64            `xml:"width,attr"`
	Height   float64            `xml:"height,attr"`
	Position Position           `xml:"position"`
	In       ConnectionPointIn  `xml:"connectionPointIn"`
	Out      ConnectionPointOut `xml:"connectionPointOut"`
	Variable string             `xml:"variable"`
}

// Block calls a function or a function block instance.
type Block struct {
	XMLName          xml.Name       `xml:"block"`
	LocalID          int            `xml:"localId,attr"`
	TypeName         string         `xml:"typeName,attr"`
	InstanceName     string         `xml:"instanceName,attr,omitempty"`
	ExecutionOrderID int            `xml:"executionOrderId,attr"`
	Width            float64        `xml:"width,attr"`
	Height           float64        `xml:"height,attr"`
	Position         Position       `xml:"position"`
	InputVariables   BlockVariables `xml:"inputVariables"`
	InOutVariables   BlockVariables `xml:"inOutVariables"`
	OutputVariables  BlockVariables `xml:"outputVariables"`
}

// BlockVariables lists the formal parameters of a block.
type BlockVariables struct {
	Variables []BlockVariable `xml:"variable"`
}

// BlockVariable is one formal parameter of a block with its connector.
type BlockVariable struct {
	FormalParameter string              `xml:"formalParameter,attr"`
	In              *ConnectionPointIn  `xml:"connectionPointIn,omitempty"`
	Out             *ConnectionPointOut `xml:"connectionPointOut,omitempty"`
}

// InVariable feeds an expression into a block input.
type InVariable struct {
	XMLName    xml.Name           `xml:"inVariable"`
	LocalID    int                `xml:"localId,attr"`
	Width      float64            `xml:"width,attr"`
	Height     float64            `xml:"height,attr"`
	Negated    bool               `xml:"negated,attr"`
	Position   Position           `xml:"position"`
	Out        ConnectionPointOut `xml:"connectionPointOut"`
	Expression string             `xml:"expression"`
}

// OutVariable stores a block output into a variable.
type OutVariable struct {
	XMLName    xml.Name          `xml:"outVariable"`
	LocalID    int               `xml:"localId,attr"`
	Width      float64           `xml:"width,attr"`
	Height     float64           `xml:"height,attr"`
	Negated    bool              `xml:"negated,attr"`
	Position   Position          `xml:"position"`
	In         ConnectionPointIn `xml:"connectionPointIn"`
	Expression string            `xml:"expression"`
}

func (e *LeftPowerRail) ID() int  { return e.LocalID }
func (e *RightPowerRail) ID() int { return e.LocalID }
func (e *Contact) ID() int        { return e.LocalID }
func (e *Coil) ID() int           { return e.LocalID }
func (e *Block) ID() int          { return e.LocalID }
func (e *InVariable) ID() int     { return e.LocalID }
func (e *OutVariable) ID() int    { return e.LocalID }

// LD is a ladder diagram body. Elements keep the node order of the rungs
// they were exported from.
type LD struct {
	XMLName  xml.Name `xml:"LD"`
	Elements []Element
}

// POU is a program organisation unit whose body is a ladder diagram.
type POU struct {
	XMLName   xml.Name  `xml:"pou"`
	Namespace string    `xml:"xmlns,attr,omitempty"`
	Name      string    `xml:"name,attr"`
	POUType   string    `xml:"pouType,attr"`
	Interface Interface `xml:"interface"`
	Body      Body      `xml:"body"`
}

// Body wraps the LD network of a POU.
type Body struct {
	LD LD `xml:"LD"`
}

// Interface declares the variables a POU body refers to.
type Interface struct {
	LocalVars []Variable `xml:"localVars>variable"`
}

// Variable is one declaration of an interface section.
type Variable struct {
	Name string  `xml:"name,attr"`
	Type VarType `xml:"type"`
}

// VarType is either an elementary type such as BOOL or a derived type such
// as a function block.
type VarType struct {
	Elementary *Elementary `xml:",any"`
	Derived    *Derived    `xml:"derived"`
}

// Elementary is an empty element named after an elementary type.
type Elementary struct {
	XMLName xml.Name
}

// Derived references a user or library type by name.
type Derived struct {
	Name string `xml:"name,attr"`
}
