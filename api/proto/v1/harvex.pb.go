// Code generated by protoc-gen-go. DO NOT EDIT.
// versions:
// 	protoc-gen-go v1.36.8
// 	protoc        (unknown)
// source: api/proto/v1/harvex.proto

package harvexpb

import (
	protoreflect "google.golang.org/protobuf/reflect/protoreflect"
	protoimpl "google.golang.org/protobuf/runtime/protoimpl"
	reflect "reflect"
	sync "sync"
	unsafe "unsafe"
)

const (
	// Verify that this generated code is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(20 - protoimpl.MinVersion)
	// Verify that runtime/protoimpl is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(protoimpl.MaxVersion - 20)
)

type OperationKind int32

const (
	OperationKind_OPERATION_KIND_UNSPECIFIED OperationKind = 0
	OperationKind_OPERATION_KIND_DEPRESS     OperationKind = 1
	OperationKind_OPERATION_KIND_AMPLIFY     OperationKind = 2
	OperationKind_OPERATION_KIND_EXTRACT     OperationKind = 3
)

// Enum value maps for OperationKind.
var (
	OperationKind_name = map[int32]string{
		0: "OPERATION_KIND_UNSPECIFIED",
		1: "OPERATION_KIND_DEPRESS",
		2: "OPERATION_KIND_AMPLIFY",
		3: "OPERATION_KIND_EXTRACT",
	}
	OperationKind_value = map[string]int32{
		"OPERATION_KIND_UNSPECIFIED": 0,
		"OPERATION_KIND_DEPRESS":     1,
		"OPERATION_KIND_AMPLIFY":     2,
		"OPERATION_KIND_EXTRACT":     3,
	}
)

func (x OperationKind) Enum() *OperationKind {
	p := new(OperationKind)
	*p = x
	return p
}

func (x OperationKind) String() string {
	return protoimpl.X.EnumStringOf(x.Descriptor(), protoreflect.EnumNumber(x))
}

func (OperationKind) Descriptor() protoreflect.EnumDescriptor {
	return file_api_proto_v1_harvex_proto_enumTypes[0].Descriptor()
}

func (OperationKind) Type() protoreflect.EnumType {
	return &file_api_proto_v1_harvex_proto_enumTypes[0]
}

func (x OperationKind) Number() protoreflect.EnumNumber {
	return protoreflect.EnumNumber(x)
}

// Deprecated: Use OperationKind.Descriptor instead.
func (OperationKind) EnumDescriptor() ([]byte, []int) {
	return file_api_proto_v1_harvex_proto_rawDescGZIP(), []int{0}
}

type RegisterRequest struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	AgentId       string                 `protobuf:"bytes,1,opt,name=agent_id,json=agentId,proto3" json:"agent_id,omitempty"`
	Hostname      string                 `protobuf:"bytes,2,opt,name=hostname,proto3" json:"hostname,omitempty"`
	TotalCapacity float64                `protobuf:"fixed64,3,opt,name=total_capacity,json=totalCapacity,proto3" json:"total_capacity,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *RegisterRequest) Reset() {
	*x = RegisterRequest{}
	mi := &file_api_proto_v1_harvex_proto_msgTypes[0]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *RegisterRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*RegisterRequest) ProtoMessage() {}

func (x *RegisterRequest) ProtoReflect() protoreflect.Message {
	mi := &file_api_proto_v1_harvex_proto_msgTypes[0]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use RegisterRequest.ProtoReflect.Descriptor instead.
func (*RegisterRequest) Descriptor() ([]byte, []int) {
	return file_api_proto_v1_harvex_proto_rawDescGZIP(), []int{0}
}

func (x *RegisterRequest) GetAgentId() string {
	if x != nil {
		return x.AgentId
	}
	return ""
}

func (x *RegisterRequest) GetHostname() string {
	if x != nil {
		return x.Hostname
	}
	return ""
}

func (x *RegisterRequest) GetTotalCapacity() float64 {
	if x != nil {
		return x.TotalCapacity
	}
	return 0
}

type RegisterResponse struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	AssignedId    string                 `protobuf:"bytes,1,opt,name=assigned_id,json=assignedId,proto3" json:"assigned_id,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *RegisterResponse) Reset() {
	*x = RegisterResponse{}
	mi := &file_api_proto_v1_harvex_proto_msgTypes[1]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *RegisterResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*RegisterResponse) ProtoMessage() {}

func (x *RegisterResponse) ProtoReflect() protoreflect.Message {
	mi := &file_api_proto_v1_harvex_proto_msgTypes[1]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use RegisterResponse.ProtoReflect.Descriptor instead.
func (*RegisterResponse) Descriptor() ([]byte, []int) {
	return file_api_proto_v1_harvex_proto_rawDescGZIP(), []int{1}
}

func (x *RegisterResponse) GetAssignedId() string {
	if x != nil {
		return x.AssignedId
	}
	return ""
}

type Operation struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	Id            string                 `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	WorkerId      string                 `protobuf:"bytes,2,opt,name=worker_id,json=workerId,proto3" json:"worker_id,omitempty"`
	Kind          OperationKind          `protobuf:"varint,3,opt,name=kind,proto3,enum=harvex.v1.OperationKind" json:"kind,omitempty"`
	TargetId      string                 `protobuf:"bytes,4,opt,name=target_id,json=targetId,proto3" json:"target_id,omitempty"`
	Threads       int32                  `protobuf:"varint,5,opt,name=threads,proto3" json:"threads,omitempty"`
	StartDelayMs  int64                  `protobuf:"varint,6,opt,name=start_delay_ms,json=startDelayMs,proto3" json:"start_delay_ms,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *Operation) Reset() {
	*x = Operation{}
	mi := &file_api_proto_v1_harvex_proto_msgTypes[2]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *Operation) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*Operation) ProtoMessage() {}

func (x *Operation) ProtoReflect() protoreflect.Message {
	mi := &file_api_proto_v1_harvex_proto_msgTypes[2]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use Operation.ProtoReflect.Descriptor instead.
func (*Operation) Descriptor() ([]byte, []int) {
	return file_api_proto_v1_harvex_proto_rawDescGZIP(), []int{2}
}

func (x *Operation) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *Operation) GetWorkerId() string {
	if x != nil {
		return x.WorkerId
	}
	return ""
}

func (x *Operation) GetKind() OperationKind {
	if x != nil {
		return x.Kind
	}
	return OperationKind_OPERATION_KIND_UNSPECIFIED
}

func (x *Operation) GetTargetId() string {
	if x != nil {
		return x.TargetId
	}
	return ""
}

func (x *Operation) GetThreads() int32 {
	if x != nil {
		return x.Threads
	}
	return 0
}

func (x *Operation) GetStartDelayMs() int64 {
	if x != nil {
		return x.StartDelayMs
	}
	return 0
}

type OperationResult struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	Id            string                 `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Status        string                 `protobuf:"bytes,2,opt,name=status,proto3" json:"status,omitempty"` // running | succeeded | failed
	Error         string                 `protobuf:"bytes,3,opt,name=error,proto3" json:"error,omitempty"`
	Logs          string                 `protobuf:"bytes,4,opt,name=logs,proto3" json:"logs,omitempty"`
	Yield         float64                `protobuf:"fixed64,5,opt,name=yield,proto3" json:"yield,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *OperationResult) Reset() {
	*x = OperationResult{}
	mi := &file_api_proto_v1_harvex_proto_msgTypes[3]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *OperationResult) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*OperationResult) ProtoMessage() {}

func (x *OperationResult) ProtoReflect() protoreflect.Message {
	mi := &file_api_proto_v1_harvex_proto_msgTypes[3]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use OperationResult.ProtoReflect.Descriptor instead.
func (*OperationResult) Descriptor() ([]byte, []int) {
	return file_api_proto_v1_harvex_proto_rawDescGZIP(), []int{3}
}

func (x *OperationResult) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *OperationResult) GetStatus() string {
	if x != nil {
		return x.Status
	}
	return ""
}

func (x *OperationResult) GetError() string {
	if x != nil {
		return x.Error
	}
	return ""
}

func (x *OperationResult) GetLogs() string {
	if x != nil {
		return x.Logs
	}
	return ""
}

func (x *OperationResult) GetYield() float64 {
	if x != nil {
		return x.Yield
	}
	return 0
}

type OperationAck struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	Id            string                 `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *OperationAck) Reset() {
	*x = OperationAck{}
	mi := &file_api_proto_v1_harvex_proto_msgTypes[4]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *OperationAck) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*OperationAck) ProtoMessage() {}

func (x *OperationAck) ProtoReflect() protoreflect.Message {
	mi := &file_api_proto_v1_harvex_proto_msgTypes[4]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use OperationAck.ProtoReflect.Descriptor instead.
func (*OperationAck) Descriptor() ([]byte, []int) {
	return file_api_proto_v1_harvex_proto_rawDescGZIP(), []int{4}
}

func (x *OperationAck) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

var File_api_proto_v1_harvex_proto protoreflect.FileDescriptor

const file_api_proto_v1_harvex_proto_rawDesc = "" +
	"\n" +
	"\x19api/proto/v1/harvex.proto\x12\tharvex.v1\"o\n" +
	"\x0fRegisterRequest\x12\x19\n" +
	"\bagent_id\x18\x01 \x01(\tR\aagentId\x12\x1a\n" +
	"\bhostname\x18\x02 \x01(\tR\bhostname\x12%\n" +
	"\x0etotal_capacity\x18\x03 \x01(\x01R\rtotalCapacity\"3\n" +
	"\x10RegisterResponse\x12\x1f\n" +
	"\vassigned_id\x18\x01 \x01(\tR\n" +
	"assignedId\"\xc3\x01\n" +
	"\tOperation\x12\x0e\n" +
	"\x02id\x18\x01 \x01(\tR\x02id\x12\x1b\n" +
	"\tworker_id\x18\x02 \x01(\tR\bworkerId\x12,\n" +
	"\x04kind\x18\x03 \x01(\x0e2\x18.harvex.v1.OperationKindR\x04kind\x12\x1b\n" +
	"\ttarget_id\x18\x04 \x01(\tR\btargetId\x12\x18\n" +
	"\athreads\x18\x05 \x01(\x05R\athreads\x12$\n" +
	"\x0estart_delay_ms\x18\x06 \x01(\x03R\fstartDelayMs\"y\n" +
	"\x0fOperationResult\x12\x0e\n" +
	"\x02id\x18\x01 \x01(\tR\x02id\x12\x16\n" +
	"\x06status\x18\x02 \x01(\tR\x06status\x12\x14\n" +
	"\x05error\x18\x03 \x01(\tR\x05error\x12\x12\n" +
	"\x04logs\x18\x04 \x01(\tR\x04logs\x12\x14\n" +
	"\x05yield\x18\x05 \x01(\x01R\x05yield\"\x1e\n" +
	"\fOperationAck\x12\x0e\n" +
	"\x02id\x18\x01 \x01(\tR\x02id*\x83\x01\n" +
	"\rOperationKind\x12\x1e\n" +
	"\x1aOPERATION_KIND_UNSPECIFIED\x10\x00\x12\x1a\n" +
	"\x16OPERATION_KIND_DEPRESS\x10\x01\x12\x1a\n" +
	"\x16OPERATION_KIND_AMPLIFY\x10\x02\x12\x1a\n" +
	"\x16OPERATION_KIND_EXTRACT\x10\x032\xe8\x01\n" +
	"\fAgentService\x12C\n" +
	"\bRegister\x12\x1a.harvex.v1.RegisterRequest\x1a\x1b.harvex.v1.RegisterResponse\x12E\n" +
	"\x0fWatchOperations\x12\x1a.harvex.v1.RegisterRequest\x1a\x14.harvex.v1.Operation0\x01\x12L\n" +
	"\x15ReportOperationResult\x12\x1a.harvex.v1.OperationResult\x1a\x17.harvex.v1.OperationAckB2Z0github.com/HarvexIO/harvex/api/proto/v1;harvexpbb\x06proto3"

var (
	file_api_proto_v1_harvex_proto_rawDescOnce sync.Once
	file_api_proto_v1_harvex_proto_rawDescData []byte
)

func file_api_proto_v1_harvex_proto_rawDescGZIP() []byte {
	file_api_proto_v1_harvex_proto_rawDescOnce.Do(func() {
		file_api_proto_v1_harvex_proto_rawDescData = protoimpl.X.CompressGZIP(unsafe.Slice(unsafe.StringData(file_api_proto_v1_harvex_proto_rawDesc), len(file_api_proto_v1_harvex_proto_rawDesc)))
	})
	return file_api_proto_v1_harvex_proto_rawDescData
}

var file_api_proto_v1_harvex_proto_enumTypes = make([]protoimpl.EnumInfo, 1)
var file_api_proto_v1_harvex_proto_msgTypes = make([]protoimpl.MessageInfo, 5)
var file_api_proto_v1_harvex_proto_goTypes = []any{
	(OperationKind)(0),       // 0: harvex.v1.OperationKind
	(*RegisterRequest)(nil),  // 1: harvex.v1.RegisterRequest
	(*RegisterResponse)(nil), // 2: harvex.v1.RegisterResponse
	(*Operation)(nil),        // 3: harvex.v1.Operation
	(*OperationResult)(nil),  // 4: harvex.v1.OperationResult
	(*OperationAck)(nil),     // 5: harvex.v1.OperationAck
}
var file_api_proto_v1_harvex_proto_depIdxs = []int32{
	0, // 0: harvex.v1.Operation.kind:type_name -> harvex.v1.OperationKind
	1, // 1: harvex.v1.AgentService.Register:input_type -> harvex.v1.RegisterRequest
	1, // 2: harvex.v1.AgentService.WatchOperations:input_type -> harvex.v1.RegisterRequest
	4, // 3: harvex.v1.AgentService.ReportOperationResult:input_type -> harvex.v1.OperationResult
	2, // 4: harvex.v1.AgentService.Register:output_type -> harvex.v1.RegisterResponse
	3, // 5: harvex.v1.AgentService.WatchOperations:output_type -> harvex.v1.Operation
	5, // 6: harvex.v1.AgentService.ReportOperationResult:output_type -> harvex.v1.OperationAck
	4, // [4:7] is the sub-list for method output_type
	1, // [1:4] is the sub-list for method input_type
	1, // [1:1] is the sub-list for extension type_name
	1, // [1:1] is the sub-list for extension extendee
	0, // [0:1] is the sub-list for field type_name
}

func init() { file_api_proto_v1_harvex_proto_init() }
func file_api_proto_v1_harvex_proto_init() {
	if File_api_proto_v1_harvex_proto != nil {
		return
	}
	type x struct{}
	out := protoimpl.TypeBuilder{
		File: protoimpl.DescBuilder{
			GoPackagePath: reflect.TypeOf(x{}).PkgPath(),
			RawDescriptor: unsafe.Slice(unsafe.StringData(file_api_proto_v1_harvex_proto_rawDesc), len(file_api_proto_v1_harvex_proto_rawDesc)),
			NumEnums:      1,
			NumMessages:   5,
			NumExtensions: 0,
			NumServices:   1,
		},
		GoTypes:           file_api_proto_v1_harvex_proto_goTypes,
		DependencyIndexes: file_api_proto_v1_harvex_proto_depIdxs,
		EnumInfos:         file_api_proto_v1_harvex_proto_enumTypes,
		MessageInfos:      file_api_proto_v1_harvex_proto_msgTypes,
	}.Build()
	File_api_proto_v1_harvex_proto = out.File
	file_api_proto_v1_harvex_proto_goTypes = nil
	file_api_proto_v1_harvex_proto_depIdxs = nil
}
