// Package layout computes C record layouts (field offsets, padding, size and
// alignment) for records whose front-end dump carries no layout of its own.
// Offsets follow the natural-alignment rules of the LP64 System V ABI.
package layout

import (
	"fmt"
)

// StructLayout represents the memory layout of a struct or union
type StructLayout struct {
	Name       string        // Record name
	Union      bool          // All fields share offset 0
	Fields     []FieldInfo   // Field information
	TotalSize  int64         // Total size including padding
	Alignment  int64         // Required alignment
	PaddingMap []PaddingInfo // Padding information
}

// FieldInfo contains information about a record field
type FieldInfo struct {
	Name      string // Field name
	Type      string // Field type name
	Offset    int64  // Offset from record start
	Size      int64  // Size of the field
	Alignment int64  // Required alignment
}

// PaddingInfo represents padding bytes inserted for alignment
type PaddingInfo struct {
	Offset int64  // Offset where padding starts
	Size   int64  // Number of padding bytes
	Reason string // Reason for padding (e.g., "field alignment", "struct alignment")
}

// ArrayLayout represents the memory layout of a fixed-size array
type ArrayLayout struct {
	ElementType  string // Type name of elements
	ElementSize  int64  // Size of each element in bytes
	ElementAlign int64  // Alignment requirement of elements
	Length       int64  // Number of elements
	TotalSize    int64  // Total array size (Length * ElementSize)
}

// LayoutCalculator provides methods to calculate memory layouts
type LayoutCalculator struct {
	TargetPointerSize int64 // Size of pointers on target architecture (8 for LP64)
	MaxAlignment      int64 // Maximum alignment supported by target
}

// NewLayoutCalculator creates a new layout calculator for LP64 targets
func NewLayoutCalculator() *LayoutCalculator {
	return &LayoutCalculator{
		TargetPointerSize: 8,
		MaxAlignment:      16,
	}
}

// CalculateArrayLayout calculates the memory layout for a fixed-size array
func (lc *LayoutCalculator) CalculateArrayLayout(elementType string, elementSize, elementAlign, length int64) (*ArrayLayout, error) {
	if length < 0 {
		return nil, fmt.Errorf("array length cannot be negative: %d", length)
	}
	if elementSize <= 0 {
		return nil, fmt.Errorf("element size must be positive: %d", elementSize)
	}
	if elementAlign <= 0 {
		elementAlign = 1
	}
	if !isPowerOfTwo(elementAlign) {
		return nil, fmt.Errorf("element alignment must be power of 2: %d", elementAlign)
	}

	return &ArrayLayout{
		ElementType:  elementType,
		ElementSize:  elementSize,
		ElementAlign: elementAlign,
		Length:       length,
		TotalSize:    length * elementSize,
	}, nil
}

// CalculateStructLayout calculates the memory layout for a struct
func (lc *LayoutCalculator) CalculateStructLayout(name string, fields []FieldInfo) (*StructLayout, error) {
	if len(fields) == 0 {
		return &StructLayout{
			Name:       name,
			Fields:     []FieldInfo{},
			TotalSize:  0,
			Alignment:  1,
			PaddingMap: []PaddingInfo{},
		}, nil
	}

	var padding []PaddingInfo
	var layoutFields []FieldInfo
	currentOffset := int64(0)
	maxAlignment := int64(1)

	for _, field := range fields {
		if field.Size < 0 {
			return nil, fmt.Errorf("field %s has invalid size: %d", field.Name, field.Size)
		}
		field.Alignment = lc.clampAlignment(field.Alignment)
		if !isPowerOfTwo(field.Alignment) {
			return nil, fmt.Errorf("field %s alignment must be power of 2: %d", field.Name, field.Alignment)
		}

		if field.Alignment > maxAlignment {
			maxAlignment = field.Alignment
		}

		alignedOffset := alignUp(currentOffset, field.Alignment)
		if alignedOffset > currentOffset {
			padding = append(padding, PaddingInfo{
				Offset: currentOffset,
				Size:   alignedOffset - currentOffset,
				Reason: fmt.Sprintf("alignment for field %s", field.Name),
			})
		}

		field.Offset = alignedOffset
		layoutFields = append(layoutFields, field)

		currentOffset = alignedOffset + field.Size
	}

	// Trailing padding so arrays of the struct keep every element aligned
	totalSize := alignUp(currentOffset, maxAlignment)
	if totalSize > currentOffset {
		padding = append(padding, PaddingInfo{
			Offset: currentOffset,
			Size:   totalSize - currentOffset,
			Reason: "struct alignment",
		})
	}

	return &StructLayout{
		Name:       name,
		Fields:     layoutFields,
		TotalSize:  totalSize,
		Alignment:  maxAlignment,
		PaddingMap: padding,
	}, nil
}

// CalculateUnionLayout places every field at offset 0 and sizes the union
// to its largest member rounded up to the strictest alignment.
func (lc *LayoutCalculator) CalculateUnionLayout(name string, fields []FieldInfo) (*StructLayout, error) {
	maxSize := int64(0)
	maxAlignment := int64(1)
	layoutFields := make([]FieldInfo, 0, len(fields))

	for _, field := range fields {
		if field.Size < 0 {
			return nil, fmt.Errorf("field %s has invalid size: %d", field.Name, field.Size)
		}
		field.Alignment = lc.clampAlignment(field.Alignment)
		if !isPowerOfTwo(field.Alignment) {
			return nil, fmt.Errorf("field %s alignment must be power of 2: %d", field.Name, field.Alignment)
		}
		if field.Alignment > maxAlignment {
			maxAlignment = field.Alignment
		}
		if field.Size > maxSize {
			maxSize = field.Size
		}
		field.Offset = 0
		layoutFields = append(layoutFields, field)
	}

	totalSize := alignUp(maxSize, maxAlignment)
	var padding []PaddingInfo
	if totalSize > maxSize {
		padding = append(padding, PaddingInfo{
			Offset: maxSize,
			Size:   totalSize - maxSize,
			Reason: "union alignment",
		})
	}

	return &StructLayout{
		Name:       name,
		Union:      true,
		Fields:     layoutFields,
		TotalSize:  totalSize,
		Alignment:  maxAlignment,
		PaddingMap: padding,
	}, nil
}

func (lc *LayoutCalculator) clampAlignment(align int64) int64 {
	if align <= 0 {
		return 1
	}
	if lc.MaxAlignment > 0 && align > lc.MaxAlignment {
		return lc.MaxAlignment
	}
	return align
}

// Utility functions

// isPowerOfTwo checks if a number is a power of 2
func isPowerOfTwo(n int64) bool {
	return n > 0 && (n&(n-1)) == 0
}

// alignUp rounds up to the next multiple of alignment
func alignUp(value, alignment int64) int64 {
	if alignment <= 1 {
		return value
	}
	return (value + alignment - 1) & ^(alignment - 1)
}

// GetFieldOffset returns the byte offset of a field within a record
func (sl *StructLayout) GetFieldOffset(fieldName string) (int64, bool) {
	for _, field := range sl.Fields {
		if field.Name == fieldName {
			return field.Offset, true
		}
	}
	return 0, false
}

// GetPaddingBytes returns the total number of padding bytes in the record
func (sl *StructLayout) GetPaddingBytes() int64 {
	var total int64
	for _, pad := range sl.PaddingMap {
		total += pad.Size
	}
	return total
}

func (al *ArrayLayout) String() string {
	return fmt.Sprintf("Array[%s; %d] (element: %d bytes, total: %d bytes, align: %d)",
		al.ElementType, al.Length, al.ElementSize, al.TotalSize, al.ElementAlign)
}

func (sl *StructLayout) String() string {
	kind := "Struct"
	if sl.Union {
		kind = "Union"
	}
	return fmt.Sprintf("%s %s (%d fields, %d bytes, %d padding, align %d)",
		kind, sl.Name, len(sl.Fields), sl.TotalSize, sl.GetPaddingBytes(), sl.Alignment)
}
